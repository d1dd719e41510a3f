// Package seed loads demo accounts and posts into an empty installation.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/content-service/internal/auth"
	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/repository"
	"github.com/spec-kit/content-service/internal/service"
)

// Account is a demo login.
type Account struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// DemoAccounts are created when missing.
var DemoAccounts = []Account{
	{Email: "admin@example.com", Password: "password123", FirstName: "Admin", LastName: "User", Role: domain.RoleAdmin},
	{Email: "user@example.com", Password: "password123", FirstName: "Regular", LastName: "User", Role: domain.RoleUser},
}

// DemoPosts are published by the first admin account when no published post exists yet.
var DemoPosts = []service.PostInput{
	{
		Title:     "Welcome to the blog",
		Content:   "This is the first post on the platform. Register an account to start writing your own.",
		Published: true,
	},
	{
		Title:     "Writing drafts",
		Content:   "Posts start as drafts that only you can see. Publish them when they are ready for readers.",
		Published: true,
	},
	{
		Title:     "Adding pictures",
		Content:   "Attach an image when creating or editing a post. Images up to five megabytes are accepted.",
		Published: true,
	},
}

// Result counts what a run created.
type Result struct {
	UsersCreated int
	PostsCreated int
}

// Seeder creates demo data through the regular repositories and services.
type Seeder struct {
	users      repository.UserRepository
	posts      service.Posts
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder constructs a seeder.
func NewSeeder(users repository.UserRepository, posts service.Posts, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, posts: posts, bcryptCost: bcryptCost, logger: logger}
}

// Run is idempotent: existing accounts are kept and posts are only added to an empty blog.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var (
		res   Result
		admin domain.Actor
	)
	for _, acct := range DemoAccounts {
		user, created, err := s.ensureAccount(ctx, acct)
		if err != nil {
			return res, err
		}
		if created {
			res.UsersCreated++
		}
		if user.Role == domain.RoleAdmin && admin.ID == "" {
			admin = domain.Actor{ID: user.ID, Role: user.Role}
		}
	}
	if admin.ID == "" {
		return res, errors.New("no admin account available to author demo posts")
	}

	page, err := s.posts.ListPosts(ctx, service.ListQuery{Page: 1, PageSize: 1, Published: true})
	if err != nil {
		return res, err
	}
	if page.Pagination.TotalPosts > 0 {
		s.logger.Info("posts already present; skipping demo posts", zap.Int("total", page.Pagination.TotalPosts))
		return res, nil
	}
	for _, input := range DemoPosts {
		if _, err := s.posts.CreatePost(ctx, input, admin, nil); err != nil {
			return res, fmt.Errorf("create demo post %q: %w", input.Title, err)
		}
		res.PostsCreated++
	}
	return res, nil
}

func (s *Seeder) ensureAccount(ctx context.Context, acct Account) (*domain.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, acct.Email)
	if err == nil {
		s.logger.Info("account exists", zap.String("email", acct.Email))
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("lookup %s: %w", acct.Email, err)
	}

	hash, err := auth.HashPassword(acct.Password, s.bcryptCost)
	if err != nil {
		return nil, false, err
	}
	user := &domain.User{
		Email:        acct.Email,
		PasswordHash: hash,
		FirstName:    acct.FirstName,
		LastName:     acct.LastName,
		Role:         acct.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create %s: %w", acct.Email, err)
	}
	s.logger.Info("account created", zap.String("email", acct.Email), zap.String("role", string(acct.Role)))
	return user, true, nil
}
