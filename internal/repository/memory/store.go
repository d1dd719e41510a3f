// Package memory provides in-process implementations of the repositories.
// They back the service when no database is configured and serve as fakes in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/repository"
)

// UserStore keeps credential records in memory.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
	now     func() time.Time
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := s.byID[id]
	return &user, nil
}

func (s *UserStore) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.byID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id string, update repository.ProfileUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	user.UpdatedAt = s.now()
	s.byID[id] = user
	return &user, nil
}

// SetRole changes a stored role; used by seeding and tests.
func (s *UserStore) SetRole(id string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		user.Role = role
		s.byID[id] = user
	}
}

type storedPost struct {
	post domain.Post
	seq  int64
}

// PostStore keeps posts in memory.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]storedPost
	seq   int64
	now   func() time.Time
}

// NewPostStore creates an empty store.
func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[string]storedPost),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.PostRepository = (*PostStore)(nil)

func (s *PostStore) Count(_ context.Context, filter repository.PostFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, item := range s.posts {
		if matches(item.post, filter) {
			total++
		}
	}
	return total, nil
}

func (s *PostStore) FindPage(_ context.Context, filter repository.PostFilter, skip, limit int) ([]domain.Post, error) {
	s.mu.RLock()
	items := make([]storedPost, 0, len(s.posts))
	for _, item := range s.posts {
		if matches(item.post, filter) {
			items = append(items, item)
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].post.CreatedAt.Equal(items[j].post.CreatedAt) {
			return items[i].post.CreatedAt.After(items[j].post.CreatedAt)
		}
		return items[i].seq > items[j].seq
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []domain.Post{}, nil
	}
	end := skip + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	result := make([]domain.Post, 0, end-skip)
	for _, item := range items[skip:end] {
		result = append(result, clonePost(item.post))
	}
	return result, nil
}

func (s *PostStore) GetByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	post := clonePost(item.post)
	return &post, nil
}

func (s *PostStore) Create(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	post.ID = uuid.NewString()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.seq++
	s.posts[post.ID] = storedPost{post: clonePost(*post), seq: s.seq}
	return nil
}

func (s *PostStore) Update(_ context.Context, id string, update repository.PostUpdate) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	post := item.post
	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Content != nil {
		post.Content = *update.Content
	}
	if update.Status != nil {
		post.Status = *update.Status
	}
	if update.PublishedAt != nil && post.PublishedAt == nil {
		stamp := *update.PublishedAt
		post.PublishedAt = &stamp
	}
	if update.Asset != nil {
		asset := *update.Asset
		post.Asset = &asset
	}
	post.UpdatedAt = s.now()
	item.post = post
	s.posts[id] = item
	result := clonePost(post)
	return &result, nil
}

func (s *PostStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return false, nil
	}
	delete(s.posts, id)
	return true, nil
}

func matches(post domain.Post, filter repository.PostFilter) bool {
	return post.IsPublished() == filter.Published
}

func clonePost(post domain.Post) domain.Post {
	post.Author = nil
	if post.PublishedAt != nil {
		stamp := *post.PublishedAt
		post.PublishedAt = &stamp
	}
	if post.Asset != nil {
		asset := *post.Asset
		post.Asset = &asset
	}
	return post
}
