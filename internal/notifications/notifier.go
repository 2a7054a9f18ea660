// Package notifications delivers per-user activity events over Redis pub/sub
// and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"recipebox/internal/middleware"
	"recipebox/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "events:user:"

// Event types delivered to post owners.
const (
	EventCommentCreated  = "comment.created"
	EventRateUpdated     = "rate.updated"
	EventPostImageAdded  = "post.image_added"
	EventMessagesDropped = "messages_dropped"
)

// Event is the JSON envelope sent to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier publishes events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends ev to a user's channel. It is a no-op without Redis.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		return err
	}
	observability.WebSocketEventsTotal.WithLabelValues(ev.Type).Inc()
	return nil
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage
// for each incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(userID uint, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	// Wait for the subscription to be confirmed so no early publish is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe events: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, ok := ParseUserChannel(msg.Channel)
				if !ok {
					middleware.Logger.Warn("invalid event channel", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(userID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParseUserChannel extracts the user id from a channel built by UserChannel.
func ParseUserChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
