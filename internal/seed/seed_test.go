package seed

import (
	"testing"

	"xtagram/internal/models"
	"xtagram/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Notification{}))
	return db
}

func TestEnsureDemoUserIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	first, err := EnsureDemoUser(db)
	require.NoError(t, err)
	assert.Equal(t, DemoUsername, first.Username)
	assert.Equal(t, service.HashPassword(DemoPassword), first.PasswordDigest)

	second, err := EnsureDemoUser(db)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", DemoUsername).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedPopulatesDatabase(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 4, NumPosts: 12}))

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(5), users) // 4 generated + demo
	assert.Equal(t, int64(12), posts)
}

func TestSeedCleanRemovesExistingRows(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.User{Username: "leftover", PasswordDigest: "x"}).Error)

	require.NoError(t, Seed(db, Options{NumUsers: 1, NumPosts: 2, ShouldClean: true}))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
