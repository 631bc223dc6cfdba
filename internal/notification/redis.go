package notification

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/assinei/assinei-backend/pkg/logger"
)

// RedisPublisher fans notifications out through Redis pub/sub so that a user
// connected to another instance still receives them. Channel layout:
// "<prefix><userID>", events encoded as JSON.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher creates a publisher. Prefix may be empty; the default is
// "notify:user:".
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "notify:user:"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Publish sends the event to the user's channel.
func (p *RedisPublisher) Publish(ctx context.Context, userID string, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.prefix+userID, b).Err()
}

// Relay subscribes to all user channels and forwards incoming events into the
// local hub. Blocks until ctx is done; run it on its own goroutine.
func (p *RedisPublisher) Relay(ctx context.Context, hub *Hub) {
	sub := p.client.PSubscribe(ctx, p.prefix+"*")
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID := strings.TrimPrefix(msg.Channel, p.prefix)
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warnf("notification relay: bad payload on %s: %v", msg.Channel, err)
				continue
			}
			hub.Send(userID, ev)
		}
	}
}
