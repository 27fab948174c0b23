// Package notifications publishes forum events to Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ModeratorsChannel receives events every counselor should see.
const ModeratorsChannel = "notifications:moderators"

// Event types.
const (
	EventPostSubmitted = "post_submitted"
	EventPostApproved  = "post_approved"
	EventPostRejected  = "post_rejected"
	EventPostRequeued  = "post_requeued"
	EventPostFlagged   = "post_flagged"
	EventPostDeleted   = "post_deleted"
	EventNewComment    = "new_comment"
)

// Event is the JSON payload published on a channel.
type Event struct {
	Type      string    `json:"type"`
	PostID    uint      `json:"post_id"`
	Note      string    `json:"note,omitempty"`
	FlagCount int64     `json:"flag_count,omitempty"`
	At        time.Time `json:"at"`
}

// UserChannel returns the channel a single user listens on.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Notifier provides helpers to publish notifications into Redis channels.
// A Notifier without a client drops every event.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	return n.publish(ctx, UserChannel(userID), event)
}

// PublishModerators sends an event to the moderators channel.
func (n *Notifier) PublishModerators(ctx context.Context, event Event) error {
	return n.publish(ctx, ModeratorsChannel, event)
}

func (n *Notifier) publish(ctx context.Context, channel string, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, channel, payload).Err()
}
