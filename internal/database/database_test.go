package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"inkwell/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestAutoMigrate_CreatesAllTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "000001_init", all[0].String())
	assert.Contains(t, all[0].UpScript, "ON DELETE SET NULL")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS posts")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000002_b.up.sql":   {Data: []byte("B")},
			"m/000002_b.down.sql": {Data: []byte("b")},
			"m/000001_a.up.sql":   {Data: []byte("A")},
			"m/000001_a.down.sql": {Data: []byte("a")},
			"m/README.md":         {Data: []byte("ignored")},
		}
		got, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Name)
		assert.Equal(t, "b", got[1].DownScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{"m/000001_a.up.sql": {Data: []byte("A")}}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("bad version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/abc_a.up.sql":   {Data: []byte("A")},
			"m/abc_a.down.sql": {Data: []byte("a")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})
}

type fakeMigrationStore struct {
	applied  []int
	ran      []int
	reverted []int
	failOn   int
}

func (f *fakeMigrationStore) GetAppliedMigrations(context.Context) ([]int, error) {
	return f.applied, nil
}

func (f *fakeMigrationStore) ApplyMigration(_ context.Context, m Migration) error {
	if m.Version == f.failOn {
		return errors.New("boom")
	}
	f.ran = append(f.ran, m.Version)
	f.applied = append(f.applied, m.Version)
	return nil
}

func (f *fakeMigrationStore) RevertMigration(_ context.Context, m Migration) error {
	f.reverted = append(f.reverted, m.Version)
	return nil
}

func TestApplyPending(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}

	store := &fakeMigrationStore{applied: []int{1}}
	require.NoError(t, applyPending(context.Background(), store, registered))
	assert.Equal(t, []int{2, 3}, store.ran)

	// Running again is a no-op.
	store.ran = nil
	require.NoError(t, applyPending(context.Background(), store, registered))
	assert.Empty(t, store.ran)

	failing := &fakeMigrationStore{failOn: 2}
	assert.Error(t, applyPending(context.Background(), failing, registered))
	assert.Equal(t, []int{1}, failing.ran)
}

func TestApplyPending_RejectsUnknownVersions(t *testing.T) {
	store := &fakeMigrationStore{applied: []int{1, 42}}
	err := applyPending(context.Background(), store, []Migration{{Version: 1, Name: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestRollback(t *testing.T) {
	store := &fakeMigrationStore{applied: []int{1}}
	require.NoError(t, rollback(context.Background(), store, 1))
	assert.Equal(t, []int{1}, store.reverted)

	assert.Error(t, rollback(context.Background(), &fakeMigrationStore{}, 1), "not applied")
	assert.Error(t, rollback(context.Background(), store, 999), "unknown version")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid dev", config.Config{Env: "development"}, true, true, false},
		{"hybrid prod", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql", config.Config{Env: "development", DBSchemaMode: "SQL"}, true, false, false},
		{"auto dev", config.Config{Env: "test", DBSchemaMode: "auto"}, false, true, false},
		{"auto prod refused", config.Config{Env: "prod", DBSchemaMode: "auto"}, false, false, true},
		{"auto prod allowed", config.Config{Env: "staging", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown", config.Config{DBSchemaMode: "yolo"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestGetSchemaStatus_AutoModeSkipsSQL(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "test", DBSchemaMode: "auto"})
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestGetSchemaStatus_FreshDatabaseHasPending(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "test", DBSchemaMode: "sql"})
	require.NoError(t, err)
	assert.Empty(t, status.AppliedVersions)
	assert.Len(t, status.PendingMigrations, len(GetMigrations()))
}

func openSingleConn(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestGetSchemaStatus_MissingTables(t *testing.T) {
	db := openSingleConn(t)
	cfg := &config.Config{Env: "test", DBSchemaMode: "auto"}

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "groups", "posts", "comments", "follows"}, status.MissingTables)

	require.NoError(t, AutoMigrate(db))
	status, err = GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Empty(t, status.MissingTables)
}

func TestAutoMigrate_RejectsSelfFollow(t *testing.T) {
	db := openSingleConn(t)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, db.Exec("INSERT INTO users (id, username, email, password) VALUES (1, 'ann', 'ann@example.com', 'x')").Error)
	err := db.Exec("INSERT INTO follows (user_id, author_id) VALUES (1, 1)").Error
	assert.Error(t, err)
}
