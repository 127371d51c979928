package service

import (
	"context"
	"strings"
	"testing"

	"xtagram/internal/models"
	"xtagram/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingBridge captures bridge publishes for assertions.
type recordingBridge struct {
	recipients []uint
	titles     []string
	messages   []string
}

func (b *recordingBridge) PublishNewPost(_ context.Context, recipientID uint, title, message string) error {
	b.recipients = append(b.recipients, recipientID)
	b.titles = append(b.titles, title)
	b.messages = append(b.messages, message)
	return nil
}

type postServiceEnv struct {
	db     *gorm.DB
	svc    *PostService
	users  *UserService
	bridge *recordingBridge
	nRepo  repository.NotificationRepository
}

func newPostServiceEnv(t *testing.T, cfg PostServiceConfig) *postServiceEnv {
	t.Helper()
	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	nRepo := repository.NewNotificationRepository(db)
	bridge := &recordingBridge{}
	return &postServiceEnv{
		db:     db,
		svc:    NewPostService(postRepo, userRepo, nRepo, bridge, cfg),
		users:  NewUserService(userRepo),
		bridge: bridge,
		nRepo:  nRepo,
	}
}

func (e *postServiceEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), username, "pw")
	require.NoError(t, err)
	return user
}

func (e *postServiceEnv) postCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Post{}).Count(&count).Error)
	return count
}

func TestCreatePostSkipsEmptyContent(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{})
	author := env.register(t, "alice")

	post, outcome, err := env.svc.CreatePost(context.Background(), author.ID, "   \n\t ")
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.Equal(t, PostSkippedEmpty, outcome)
	assert.Equal(t, int64(0), env.postCount(t))
}

func TestCreatePostSkipsOverCap(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{MaxPostChars: 10})
	author := env.register(t, "alice")

	// 11 runes, multibyte included; the cap counts characters, not bytes.
	content := "héllo wörld"
	require.Equal(t, 11, len([]rune(content)))

	post, outcome, err := env.svc.CreatePost(context.Background(), author.ID, content)
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.Equal(t, PostSkippedTooLong, outcome)
	assert.Equal(t, int64(0), env.postCount(t))
}

func TestCreatePostAtCapIsKept(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{MaxPostChars: 5})
	author := env.register(t, "alice")

	post, outcome, err := env.svc.CreatePost(context.Background(), author.ID, "héllo")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, PostCreated, outcome)
	assert.Equal(t, "héllo", post.Content)
}

func TestCreatePostUnlimitedWhenCapZero(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{MaxPostChars: 0})
	author := env.register(t, "alice")

	long := strings.Repeat("x", 5000)
	post, outcome, err := env.svc.CreatePost(context.Background(), author.ID, long)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, PostCreated, outcome)
}

func TestFanOutNotifiesEveryone(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{})
	author := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	ctx := context.Background()
	_, outcome, err := env.svc.CreatePost(ctx, author.ID, "hello world")
	require.NoError(t, err)
	require.Equal(t, PostCreated, outcome)

	// Author gets the self notification.
	own, err := env.nRepo.ListByUser(ctx, author.ID, 10)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "New post created", own[0].Title)
	assert.Equal(t, "You created a post: hello world...", own[0].Message)

	// Everyone else gets the broadcast.
	for _, other := range []uint{bob.ID, carol.ID} {
		list, err := env.nRepo.ListByUser(ctx, other, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "New post from alice", list[0].Title)
		assert.Equal(t, "hello world", list[0].Message)
	}

	// The bridge fires per broadcast recipient, never for the author.
	assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, env.bridge.recipients)
}

func TestFanOutTruncatesLongContent(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{})
	author := env.register(t, "alice")
	bob := env.register(t, "bob")

	ctx := context.Background()
	content := strings.Repeat("é", 150)
	_, _, err := env.svc.CreatePost(ctx, author.ID, content)
	require.NoError(t, err)

	list, err := env.nRepo.ListByUser(ctx, bob.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, strings.Repeat("é", 100)+"...", list[0].Message)

	own, err := env.nRepo.ListByUser(ctx, author.ID, 10)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "You created a post: "+strings.Repeat("é", 50)+"...", own[0].Message)
}

func TestLikeIncrementsWithoutDedup(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{})
	author := env.register(t, "alice")

	ctx := context.Background()
	post, _, err := env.svc.CreatePost(ctx, author.ID, "likable")
	require.NoError(t, err)

	var likes int
	for i := 0; i < 4; i++ {
		likes, err = env.svc.Like(ctx, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, likes)
}

func TestLikeMissingPost(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{})

	_, err := env.svc.Like(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))
}

func TestFeedScopeGlobal(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{FeedScope: "global", FeedLimit: 20})
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	ctx := context.Background()
	_, _, err := env.svc.CreatePost(ctx, alice.ID, "from alice")
	require.NoError(t, err)
	_, _, err = env.svc.CreatePost(ctx, bob.ID, "from bob")
	require.NoError(t, err)

	posts, err := env.svc.Feed(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestFeedScopeOwn(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{FeedScope: "own", FeedLimit: 5})
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	ctx := context.Background()
	_, _, err := env.svc.CreatePost(ctx, alice.ID, "from alice")
	require.NoError(t, err)
	_, _, err = env.svc.CreatePost(ctx, bob.ID, "from bob")
	require.NoError(t, err)

	posts, err := env.svc.Feed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "from alice", posts[0].Content)
}

func TestStats(t *testing.T) {
	env := newPostServiceEnv(t, PostServiceConfig{})
	alice := env.register(t, "alice")

	ctx := context.Background()
	first, _, err := env.svc.CreatePost(ctx, alice.ID, "one")
	require.NoError(t, err)
	_, _, err = env.svc.CreatePost(ctx, alice.ID, "two")
	require.NoError(t, err)

	_, err = env.svc.Like(ctx, first.ID)
	require.NoError(t, err)
	_, err = env.svc.Like(ctx, first.ID)
	require.NoError(t, err)

	stats, err := env.svc.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.PostCount)
	assert.Equal(t, int64(2), stats.TotalLikes)
}
