package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventPostCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventPostCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventPostDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventPostCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected handler calls %v", calls)
	}
}

type capturePublisher struct {
	channel string
	message []byte
}

func (c *capturePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	c.channel = channel
	c.message = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestRedisRelayPublishesJSON(t *testing.T) {
	pub := &capturePublisher{}
	d := NewInMemoryDispatcher(nil)
	NewRedisRelay(pub, "content.events").Attach(d)

	event := Event{ID: "evt-1", Type: EventPostPublished, ResourceID: "p1", Actor: Actor{ID: "u1", Role: "user"}}
	if err := d.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.channel != "content.events" {
		t.Fatalf("unexpected channel %q", pub.channel)
	}
	var decoded Event
	if err := json.Unmarshal(pub.message, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "evt-1" || decoded.Type != EventPostPublished || decoded.ResourceID != "p1" {
		t.Fatalf("unexpected relayed event %+v", decoded)
	}
}
