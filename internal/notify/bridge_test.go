package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishNewPost(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, UserChannel(7))
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	bridge := NewRedisBridge(rdb)
	require.NoError(t, bridge.PublishNewPost(ctx, 7, "New post from alice", "hello"))

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "new_post", event.Type)
	assert.Equal(t, "New post from alice", event.Title)
	assert.Equal(t, "hello", event.Message)
	assert.Equal(t, uint(7), event.UserID)
}

func TestPublishNewPostNilClient(t *testing.T) {
	bridge := NewRedisBridge(nil)
	assert.NoError(t, bridge.PublishNewPost(context.Background(), 1, "t", "m"))
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "xtagram:notifications:user:42", UserChannel(42))
}
