package hook

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher is the external publish capability the envelope is handed to.
type Publisher interface {
	Publish(ctx context.Context, channel, message string) error
}

// RedisPublisher publishes envelopes over Redis pub/sub.
type RedisPublisher struct {
	client redis.UniversalClient
}

// NewRedisPublisher wraps a connected client.
func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends the message via PUBLISH.
func (p *RedisPublisher) Publish(ctx context.Context, channel, message string) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("redis publisher not configured")
	}
	return p.client.Publish(ctx, channel, message).Err()
}
