package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository_CreateAndLookup(t *testing.T) {
	repo := NewGroupRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	g := &models.Group{Title: "Cats", Slug: "cats", Description: "meow"}
	require.NoError(t, repo.Create(ctx, g))
	assert.NotZero(t, g.ID)

	bySlug, err := repo.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, g.ID, bySlug.ID)

	byID, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cats", byID.Title)

	_, err = repo.GetBySlug(ctx, "dogs")
	assert.True(t, models.IsNotFound(err))
}

func TestGroupRepository_DuplicateSlug(t *testing.T) {
	repo := NewGroupRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Cats", Slug: "cats"}))
	err := repo.Create(ctx, &models.Group{Title: "More cats", Slug: "cats"})

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "slug", appErr.Field)
}

func TestGroupRepository_ListOrderedByTitle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Zebras", Slug: "zebras"}))
	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Ants", Slug: "ants"}))

	groups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "ants", groups[0].Slug)
}

func TestGroupRepository_DeleteDetachesPosts(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	groups := NewGroupRepository(db)
	posts := NewPostRepository(db)
	leo := testutil.CreateUser(t, db, "leo")
	cats := testutil.CreateGroup(t, db, "cats")
	post := testutil.CreatePost(t, db, leo, cats, "in cats", time.Now())
	ctx := context.Background()

	require.NoError(t, groups.Delete(ctx, cats.ID))

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err, "post must survive its group")
	assert.Nil(t, got.GroupID)

	_, err = groups.GetBySlug(ctx, "cats")
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsNotFound(groups.Delete(ctx, cats.ID)))
}
