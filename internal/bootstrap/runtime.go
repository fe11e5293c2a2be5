// Package bootstrap opens the runtime dependencies of the server process.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and, when configured, Redis. A nil
// client is returned when Redis is not configured or unreachable.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if cfg.RedisURL != "" {
		cache.InitRedis(cfg.RedisURL)
	}

	if err := EnsureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, cache.GetClient(), nil
}

// EnsureDevAdmin creates the configured development admin, or promotes an
// existing account with that username. It does nothing outside development
// or when no username is configured.
func EnsureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("username = ?", username).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if cfg.DevAdminPassword == "" {
				return errors.New("DEV_ADMIN_PASSWORD must be set to create the development admin")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			user = models.User{
				Username: username,
				Email:    username + "@inkwell.local",
				Password: string(hashed),
				IsAdmin:  true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			middleware.Logger.Info("development admin created", "username", username)
		case err != nil:
			return err
		case !user.IsAdmin:
			if err := tx.Model(&user).Update("is_admin", true).Error; err != nil {
				return err
			}
			cache.InvalidateUser(context.Background(), user.ID)
			middleware.Logger.Info("development admin promoted", "username", username)
		}
		return nil
	})
}
