package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/content-service/internal/service"
)

// ErrQueueFull is returned when a notification cannot be queued.
var ErrQueueFull = errors.New("notification queue full")

const defaultQueueSize = 256

// NotificationWorker delivers notifications off the request path. It implements
// service.Notifier by queueing and hands each item to the downstream notifier
// from a single goroutine.
type NotificationWorker struct {
	downstream service.Notifier
	logger     *zap.Logger
	queue      chan service.Notification

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(downstream service.Notifier, logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if downstream == nil {
		downstream = service.NewLogNotifier(logger)
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		downstream: downstream,
		logger:     logger,
		queue:      make(chan service.Notification, queueSize),
		done:       make(chan struct{}),
	}
}

// Notify queues n without blocking.
func (w *NotificationWorker) Notify(_ context.Context, n service.Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("notification worker stopped")
	}
	select {
	case w.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs the delivery loop until Stop is called.
func (w *NotificationWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for n := range w.queue {
			if err := w.downstream.Notify(ctx, n); err != nil {
				w.logger.Warn("notification delivery failed",
					zap.String("channel", n.Channel),
					zap.String("event_type", string(n.EventType)),
					zap.String("resource_id", n.ResourceID),
					zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for queued notifications to drain.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

// StartNotificationWorker starts the worker and registers notification handlers.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, w *NotificationWorker) {
	if notificationService == nil || w == nil {
		return
	}
	w.Start(ctx)
	notificationService.RegisterHandlers()
}
