package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_UpdateUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "Old Name")

	err := repo.UpdateUser(ctx, user.ID, models.ProfileUpdate{DisplayName: "New Name", City: "Brugge", Age: 41, AvatarURL: "http://x/a.png"})
	require.NoError(t, err)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.DisplayName)
	assert.Equal(t, "Brugge", got.City)
	assert.Equal(t, 41, got.Age)
	assert.Equal(t, "http://x/a.png", got.AvatarURL)

	// Without a new avatar the old one stays.
	require.NoError(t, repo.UpdateUser(ctx, user.ID, models.ProfileUpdate{DisplayName: "Newer", City: "Brugge", Age: 42}))
	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Newer", got.DisplayName)
	assert.Equal(t, "http://x/a.png", got.AvatarURL)

	err = repo.UpdateUser(ctx, "nobody", models.ProfileUpdate{DisplayName: "x"})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestUserRepository_DeleteUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "Gone")
	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	_, err := repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), repositories.ErrUserNotFound)
}

func TestUserRepository_DeleteUserWithPosts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "Busy")
	testutil.SeedPost(t, db, user.ID, "Stew", "slow", time.Now())

	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), repositories.ErrUserHasPosts)

	_, err := repo.GetUserByID(ctx, user.ID)
	assert.NoError(t, err)
}

func TestUserRepository_GetUsersByIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	a := testutil.SeedUser(t, db, "A")
	testutil.SeedUser(t, db, "B")

	users, err := repo.GetUsersByIDs(ctx, []string{a.ID})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "A", users[0].DisplayName)

	all, err := repo.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
