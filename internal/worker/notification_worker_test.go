package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/content-service/internal/config"
	"github.com/spec-kit/content-service/internal/events"
	"github.com/spec-kit/content-service/internal/service"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n service.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func TestWorkerDrainsQueueOnStop(t *testing.T) {
	downstream := &recordingNotifier{}
	w := NewNotificationWorker(downstream, nil, 8)
	w.Start(context.Background())

	for i := 0; i < 3; i++ {
		if err := w.Notify(context.Background(), service.Notification{Channel: "email"}); err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}
	w.Stop()

	if len(downstream.sent) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(downstream.sent))
	}
	if err := w.Notify(context.Background(), service.Notification{}); err == nil {
		t.Fatal("expected notify after stop to fail")
	}
}

func TestWorkerRejectsWhenFull(t *testing.T) {
	w := NewNotificationWorker(&recordingNotifier{}, nil, 1)
	if err := w.Notify(context.Background(), service.Notification{}); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	if err := w.Notify(context.Background(), service.Notification{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	w.Start(context.Background())
	w.Stop()
}

func TestWorkerSurvivesDeliveryFailure(t *testing.T) {
	downstream := &recordingNotifier{err: errors.New("smtp down")}
	w := NewNotificationWorker(downstream, nil, 4)

	dispatcher := events.NewInMemoryDispatcher(nil)
	notifications := service.NewNotificationService(dispatcher, nil, config.NotificationConfig{WebhookURL: "https://hooks.example"}, w)
	StartNotificationWorker(context.Background(), notifications, w)

	for i := 0; i < 2; i++ {
		err := dispatcher.Publish(context.Background(), events.Event{
			Type:       events.EventPostDeleted,
			ResourceID: "post-1",
			Payload:    events.PostDeletedPayload{AuthorID: "author-1"},
		})
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	w.Stop()

	if len(downstream.sent) != 2 {
		t.Fatalf("expected both deliveries attempted, got %d", len(downstream.sent))
	}
}
