package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/content-service/internal/config"
	"github.com/spec-kit/content-service/internal/events"
)

// Notification is a message handed to a delivery channel.
type Notification struct {
	Channel    string
	Recipient  string
	Subject    string
	EventType  events.EventType
	ResourceID string
}

// Notifier delivers notifications. The default implementation only logs.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a Notifier that only logs deliveries.
func NewLogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logNotifier{logger: logger}
}

func (l logNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Debug("notification",
		zap.String("channel", n.Channel),
		zap.String("recipient", n.Recipient),
		zap.String("subject", n.Subject),
		zap.String("event_type", string(n.EventType)),
		zap.String("resource_id", n.ResourceID))
	return nil
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	notifier   Notifier
}

// NewNotificationService creates the service. A nil notifier logs deliveries.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, notifier Notifier) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = logNotifier{logger: logger}
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		notifier:   notifier,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventPostPublished, n.handlePostPublished)
	n.dispatcher.Subscribe(events.EventPostDeleted, n.handlePostDeleted)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserRegistered", zap.String("user_id", event.ResourceID))
	return n.sendEmail(ctx, event, payload.Email, fmt.Sprintf("Welcome to the blog, %s!", payload.FirstName))
}

func (n *NotificationService) handlePostPublished(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PostPublishedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("PostPublished", zap.String("post_id", event.ResourceID), zap.String("author_id", payload.AuthorID))
	return n.sendWebhook(ctx, event, "New post: "+payload.Title)
}

func (n *NotificationService) handlePostDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("PostDeleted", zap.String("post_id", event.ResourceID))
	return n.sendWebhook(ctx, event, "Post removed")
}

func (n *NotificationService) sendEmail(ctx context.Context, event events.Event, recipient, subject string) error {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || recipient == "" {
		return nil
	}
	return n.notifier.Notify(ctx, Notification{
		Channel:    "email",
		Recipient:  recipient,
		Subject:    subject,
		EventType:  event.Type,
		ResourceID: event.ResourceID,
	})
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event, subject string) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	return n.notifier.Notify(ctx, Notification{
		Channel:    "webhook",
		Recipient:  n.cfg.WebhookURL,
		Subject:    subject,
		EventType:  event.Type,
		ResourceID: event.ResourceID,
	})
}
