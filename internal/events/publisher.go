// Package events reports finished chat requests on a Redis pub/sub channel
// so that dashboards can follow relay health without touching the requests.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"nlvx-chat/internal/models"
)

const DefaultChannel = "chat_relay_events"

// Publisher receives one event per finished chat request. Implementations
// must not block the caller for long and must not fail the request.
type Publisher interface {
	Publish(ctx context.Context, evt models.RelayEvent)
}

// Noop discards events. Used when no Redis URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, models.RelayEvent) {}

// redisPublisher is the subset of *redis.Client the publisher needs.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type RedisPublisher struct {
	client  redisPublisher
	channel string
	timeout time.Duration
}

func NewRedisPublisher(client redisPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		timeout: 2 * time.Second,
	}
}

// Publish sends evt as JSON. The request context may already be cancelled
// (client gone), so the publish runs on its own short deadline.
func (p *RedisPublisher) Publish(_ context.Context, evt models.RelayEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Relay event marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		log.Printf("Relay event publish failed (request %s): %v", evt.RequestID, err)
	}
}
