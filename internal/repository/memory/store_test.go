package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/repository"
)

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, &domain.User{Email: "jane@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Create(ctx, &domain.User{Email: "jane@example.com"})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	// lookups are exact
	if _, err := store.GetByEmail(ctx, "Jane@example.com"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected case-sensitive miss, got %v", err)
	}
}

func TestPostStoreOrdersNewestFirst(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, title := range []string{"first", "second", "third"} {
		if err := store.Create(ctx, &domain.Post{Title: title, Status: domain.PostStatusPublished}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := store.Create(ctx, &domain.Post{Title: "draft", Status: domain.PostStatusDraft}); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := store.FindPage(ctx, repository.PostFilter{Published: true}, 0, 2)
	if err != nil {
		t.Fatalf("find page: %v", err)
	}
	if len(page) != 2 || page[0].Title != "third" || page[1].Title != "second" {
		t.Fatalf("unexpected page %+v", page)
	}

	drafts, err := store.Count(ctx, repository.PostFilter{Published: false})
	if err != nil || drafts != 1 {
		t.Fatalf("expected 1 draft, got %d (%v)", drafts, err)
	}
}

func TestPostStoreKeepsFirstPublishedAt(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()
	post := &domain.Post{Title: "t", Status: domain.PostStatusDraft}
	if err := store.Create(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	if _, err := store.Update(ctx, post.ID, repository.PostUpdate{PublishedAt: &first}); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := store.Update(ctx, post.ID, repository.PostUpdate{PublishedAt: &second})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.PublishedAt.Equal(first) {
		t.Fatalf("expected publishedAt to stay %s, got %s", first, updated.PublishedAt)
	}
}

func TestPostStoreReturnsCopies(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()
	post := &domain.Post{Title: "t", Asset: &domain.AssetRef{ExternalID: "a", URL: "u"}}
	if err := store.Create(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	loaded.Asset.ExternalID = "mutated"

	again, _ := store.GetByID(ctx, post.ID)
	if again.Asset.ExternalID != "a" {
		t.Fatal("stored post was mutated through a returned pointer")
	}
}

func TestPostStoreDeleteMissing(t *testing.T) {
	deleted, err := NewPostStore().Delete(context.Background(), "missing")
	if err != nil || deleted {
		t.Fatalf("expected (false, nil), got (%v, %v)", deleted, err)
	}
}
