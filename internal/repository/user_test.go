package repository

import (
	"context"
	"testing"

	"xtagram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Notification{}))
	return db
}

func newUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:       username,
		PasswordDigest: "0000000000000000000000000000000000000000000000000000000000000000",
		AvatarURL:      models.DefaultAvatarURL,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserRepository_CreateDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Username: "alice", PasswordDigest: "aa", AvatarURL: models.DefaultAvatarURL}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.User{Username: "alice", PasswordDigest: "bb", AvatarURL: models.DefaultAvatarURL}
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "DUPLICATE"))
}

func TestUserRepository_GetByCredentials(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser(t, db, "bob")

	found, err := repo.GetByCredentials(ctx, "bob", user.PasswordDigest)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	// Wrong digest and unknown username both come back as a plain miss.
	found, err = repo.GetByCredentials(ctx, "bob", "ffff")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.GetByCredentials(ctx, "nobody", user.PasswordDigest)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))
}

func TestUserRepository_ListIDsExcept(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := newUser(t, db, "a")
	b := newUser(t, db, "b")
	c := newUser(t, db, "c")

	ids, err := repo.ListIDsExcept(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, ids)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
