package seed

import (
	"context"
	"testing"

	"github.com/spec-kit/content-service/internal/auth"
	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/repository/memory"
	"github.com/spec-kit/content-service/internal/service"
)

type noopObjects struct{}

func (noopObjects) Upload(context.Context, []byte, string) (domain.AssetRef, error) {
	return domain.AssetRef{}, nil
}

func (noopObjects) Delete(context.Context, string) error { return nil }

func TestSeederIsIdempotent(t *testing.T) {
	users := memory.NewUserStore()
	posts := service.NewPostService(service.PostDependencies{PostRepo: memory.NewPostStore(), ObjectStore: noopObjects{}})
	seeder := NewSeeder(users, posts, 4, nil)

	first, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.UsersCreated != 2 || first.PostsCreated != 3 {
		t.Fatalf("unexpected first run result %+v", first)
	}

	second, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.UsersCreated != 0 || second.PostsCreated != 0 {
		t.Fatalf("expected nothing new on second run, got %+v", second)
	}

	admin, err := users.GetByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("lookup admin: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
	if err := auth.ComparePassword(admin.PasswordHash, "password123"); err != nil {
		t.Fatalf("expected demo password to match: %v", err)
	}

	page, err := posts.ListPosts(context.Background(), service.ListQuery{Published: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, p := range page.Posts {
		if p.AuthorID != admin.ID {
			t.Fatalf("expected demo posts authored by admin, got %s", p.AuthorID)
		}
	}
}
