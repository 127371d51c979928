package repository

import (
	"context"
	"testing"
	"time"

	"xtagram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListRecentOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := newUser(t, db, "author")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		post := &models.Post{
			Content:   string(rune('a' + i)),
			UserID:    author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, post))
	}

	posts, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "e", posts[0].Content)
	assert.Equal(t, "d", posts[1].Content)
	assert.Equal(t, "c", posts[2].Content)
	assert.Equal(t, "author", posts[0].User.Username)
}

func TestPostRepository_ListRecentByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Post{Content: "mine", UserID: alice.ID}))
	require.NoError(t, repo.Create(ctx, &models.Post{Content: "theirs", UserID: bob.ID}))

	posts, err := repo.ListRecentByUser(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "mine", posts[0].Content)
}

func TestPostRepository_LikeIncrementsWithoutDedup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := newUser(t, db, "author")
	post := &models.Post{Content: "hi", UserID: author.ID}
	require.NoError(t, repo.Create(ctx, post))

	var likes int
	var err error
	for i := 0; i < 3; i++ {
		likes, err = repo.Like(ctx, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, likes)
}

func TestPostRepository_LikeMissingPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.Like(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))
}

func TestPostRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Post{Content: "one", UserID: alice.ID, Likes: 2}))
	require.NoError(t, repo.Create(ctx, &models.Post{Content: "two", UserID: alice.ID, Likes: 5}))

	count, err := repo.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := repo.SumLikesByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	// A user with no posts sums to zero, not NULL.
	total, err = repo.SumLikesByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
