package service

import (
	"context"
	"testing"

	"github.com/spec-kit/content-service/internal/config"
	"github.com/spec-kit/content-service/internal/events"
	"github.com/spec-kit/content-service/internal/repository/memory"
)

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func TestNotificationsFollowDomainEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	notifier := &recordingNotifier{}
	NewNotificationService(dispatcher, nil, config.NotificationConfig{
		EmailFrom:  "noreply@blogapp.com",
		WebhookURL: "https://hooks.example/blog",
	}, notifier).RegisterHandlers()

	authSvc := newAuthService(t, memory.NewUserStore(), dispatcher)
	res := register(t, authSvc, "welcome@example.com")

	posts := NewPostService(PostDependencies{
		PostRepo:    memory.NewPostStore(),
		ObjectStore: &fakeObjectStore{log: &callLog{}},
		Dispatcher:  dispatcher,
	})
	author := newUser()
	mustCreate(t, posts, author, "Draft only", false, nil)
	published := mustCreate(t, posts, author, "Hello world", true, nil)

	if len(notifier.sent) != 2 {
		t.Fatalf("expected welcome email and publish webhook, got %+v", notifier.sent)
	}
	welcome := notifier.sent[0]
	if welcome.Channel != "email" || welcome.Recipient != "welcome@example.com" || welcome.ResourceID != res.User.ID {
		t.Fatalf("unexpected welcome notification %+v", welcome)
	}
	hook := notifier.sent[1]
	if hook.Channel != "webhook" || hook.ResourceID != published.ID || hook.Subject != "New post: Hello world" {
		t.Fatalf("unexpected publish notification %+v", hook)
	}
}

func TestNotificationsSkippedWithoutChannels(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	notifier := &recordingNotifier{}
	NewNotificationService(dispatcher, nil, config.NotificationConfig{}, notifier).RegisterHandlers()

	register(t, newAuthService(t, memory.NewUserStore(), dispatcher), "quiet@example.com")
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no deliveries, got %+v", notifier.sent)
	}
}
