package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes events as JSON on a Redis pub/sub channel.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier returns a notifier publishing on channel.
func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

// Publish implements Notifier.
func (n *RedisNotifier) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, b).Err(); err != nil {
		return fmt.Errorf("publishing %s event for %s: %w", e.Type, e.ID, err)
	}
	return nil
}

// Subscribe delivers events published on the channel until ctx is
// cancelled, after which the returned channel is closed. Malformed payloads
// are logged and skipped.
func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := n.rdb.Subscribe(ctx, n.channel)

	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", n.channel, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					slog.Warn("dropping malformed event", "channel", n.channel, "error", err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
