// Package notify provides the best-effort mobile notification bridge.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Bridge is the optional push-style capability the core calls fire-and-forget
// when a new post fans out. Absence or failure of the bridge must never affect
// the datastore writes it accompanies.
type Bridge interface {
	PublishNewPost(ctx context.Context, recipientID uint, title, message string) error
}

// Event is the payload published for the mobile shell.
type Event struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

// RedisBridge publishes events to per-user Redis channels that the mobile
// wrapper's companion process subscribes to.
type RedisBridge struct {
	rdb *redis.Client
}

// NewRedisBridge creates a new RedisBridge using the provided Redis client.
func NewRedisBridge(rdb *redis.Client) *RedisBridge {
	return &RedisBridge{rdb: rdb}
}

// PublishNewPost sends a new-post event to the recipient's channel.
// A nil Redis client makes this a no-op.
func (b *RedisBridge) PublishNewPost(ctx context.Context, recipientID uint, title, message string) error {
	if b.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(Event{
		Type:    "new_post",
		Title:   title,
		Message: message,
		UserID:  recipientID,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return b.rdb.Publish(ctx, UserChannel(recipientID), payload).Err()
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("xtagram:notifications:user:%d", userID)
}
