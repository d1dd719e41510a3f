package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher is the part of a Redis client the relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay forwards dispatched events to a Redis pub/sub channel so other
// processes can follow post lifecycle changes.
type RedisRelay struct {
	client  Publisher
	channel string
}

// NewRedisRelay builds a relay publishing on channel.
func NewRedisRelay(client Publisher, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

// Attach subscribes the relay to every event type.
func (r *RedisRelay) Attach(dispatcher Dispatcher) {
	if r == nil || r.client == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, r.Handle)
	}
}

// Handle publishes a single event as JSON.
func (r *RedisRelay) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}
