// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"testing"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory sqlite database that lives as long as
// the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(config.SQLiteDSN(":memory:")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection would get its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.AutoMigrate(db, true))
	return db
}

// SeedUser inserts a profile row
func SeedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{ID: uuid.NewString(), DisplayName: name, City: "Gent", Age: 30}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// SeedPost inserts a post owned by userID created at the given time
func SeedPost(t *testing.T, db *gorm.DB, userID, dish, description string, createdAt time.Time) models.Post {
	t.Helper()

	post := models.Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		DishName:    dish,
		Description: description,
		IsOwnRecipe: true,
		CreatedAt:   createdAt.UTC(),
	}
	require.NoError(t, db.Omit("Author", "Likes").Create(&post).Error)
	return post
}
