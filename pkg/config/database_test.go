package config_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.InitDB(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "recipes.db"),
		PostStore:  "sql",
	})
	require.NoError(t, err)
	t.Cleanup(db.CloseDB)

	require.NoError(t, repositories.AutoMigrate(db.SQL, true))
	return db.SQL
}

func seed(t *testing.T, db *gorm.DB) (models.User, models.Post) {
	t.Helper()

	user := models.User{ID: uuid.NewString(), DisplayName: "Chef", City: "Gent", Age: 30}
	require.NoError(t, db.Create(&user).Error)
	post := models.Post{ID: uuid.NewString(), UserID: user.ID, DishName: "Stew", IsOwnRecipe: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Omit("Author", "Likes").Create(&post).Error)
	return user, post
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "recipes.db?_foreign_keys=on", config.SQLiteDSN("recipes.db"))
	assert.Equal(t, ":memory:?_foreign_keys=on", config.SQLiteDSN(":memory:"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on", config.SQLiteDSN("file:x.db?cache=shared"))
}

func TestInitDB_TranslatesDuplicates(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	user, post := seed(t, db)

	likes := repositories.NewPostgresLikeRepository(db)
	require.NoError(t, likes.CreateLike(ctx, &models.Like{UserID: user.ID, PostID: post.ID}))
	assert.ErrorIs(t, likes.CreateLike(ctx, &models.Like{UserID: user.ID, PostID: post.ID}), repositories.ErrAlreadyLiked)

	creds := repositories.NewPostgresCredentialRepository(db)
	require.NoError(t, creds.CreateCredential(ctx, &models.Credential{ID: uuid.NewString(), Email: "a@example.com", PasswordHash: "x"}))
	err := creds.CreateCredential(ctx, &models.Credential{ID: uuid.NewString(), Email: "a@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
}

func TestInitDB_EnforcesForeignKeys(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	user, post := seed(t, db)

	sync := feed.NewSynchronizer(
		repositories.NewPostgresPostRepository(db),
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresLikeRepository(db),
	)
	state, err := sync.ToggleLike(ctx, user.ID, "no-such-post", false)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	assert.False(t, state.Liked)

	var orphans int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", "no-such-post").Count(&orphans).Error)
	assert.Zero(t, orphans)

	users := repositories.NewPostgresUserRepository(db)
	assert.ErrorIs(t, users.DeleteUser(ctx, user.ID), repositories.ErrUserHasPosts)

	require.NoError(t, repositories.NewPostgresPostRepository(db).DeletePost(ctx, post.ID))
	assert.NoError(t, users.DeleteUser(ctx, user.ID))
}
