package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/content-service/internal/authz"
	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/events"
	"github.com/spec-kit/content-service/internal/repository"
	"github.com/spec-kit/content-service/internal/storage"
	apperrors "github.com/spec-kit/content-service/pkg/util"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	minTitleLength   = 3
	maxTitleLength   = 200
	minContentLength = 10

	// DefaultMaxUploadBytes bounds an asset when no limit is configured.
	DefaultMaxUploadBytes = 5 * 1024 * 1024
)

// Posts manages the lifecycle of blog posts and their media.
type Posts interface {
	ListPosts(ctx context.Context, query ListQuery) (*PostPage, error)
	GetPost(ctx context.Context, id string, actor domain.Actor) (*domain.Post, error)
	CreatePost(ctx context.Context, input PostInput, actor domain.Actor, asset *AssetUpload) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, changes PostChanges, actor domain.Actor, asset *AssetUpload) (*domain.Post, error)
	DeletePost(ctx context.Context, id string, actor domain.Actor) error
	CanModify(ctx context.Context, id string, actor domain.Actor) (bool, error)
}

// PostInput describes a new post.
type PostInput struct {
	Title     string
	Content   string
	Published bool
}

// PostChanges lists the fields a caller wants to change; nil fields are kept.
type PostChanges struct {
	Title     *string
	Content   *string
	Published *bool
}

// AssetUpload carries an uploaded file.
type AssetUpload struct {
	Data     []byte
	MimeType string
}

// ListQuery selects a page of posts.
type ListQuery struct {
	Page      int
	PageSize  int
	Published bool
}

// Pagination summarizes a page within the full result set.
type Pagination struct {
	CurrentPage int
	PageSize    int
	TotalPosts  int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
}

// PostPage is one page of posts plus its pagination metadata.
type PostPage struct {
	Posts      []domain.Post
	Pagination Pagination
}

// PostService coordinates post workflows across the post store and object store.
type PostService struct {
	posts          repository.PostRepository
	users          repository.UserRepository
	objects        storage.ObjectStore
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	now            func() time.Time
	maxUploadBytes int64
}

// PostDependencies bundles collaborators for the post service.
type PostDependencies struct {
	PostRepo       repository.PostRepository
	// UserRepo resolves post authors; without it posts carry no author details.
	UserRepo       repository.UserRepository
	ObjectStore    storage.ObjectStore
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          func() time.Time
	MaxUploadBytes int64
}

var _ Posts = (*PostService)(nil)

// NewPostService constructs the service.
func NewPostService(deps PostDependencies) *PostService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	limit := deps.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	return &PostService{
		posts:          deps.PostRepo,
		users:          deps.UserRepo,
		objects:        deps.ObjectStore,
		dispatcher:     deps.Dispatcher,
		logger:         logger,
		now:            clock,
		maxUploadBytes: limit,
	}
}

// ListPosts returns one page of posts matching the published filter, newest first.
func (s *PostService) ListPosts(ctx context.Context, query ListQuery) (*PostPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filter := repository.PostFilter{Published: query.Published}
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("post store", err)
	}
	totalPages := (total + size - 1) / size

	items := []domain.Post{}
	// pages past the end are empty; skipping the query keeps (page-1)*size below total
	if page <= totalPages {
		found, err := s.posts.FindPage(ctx, filter, (page-1)*size, size)
		if err != nil {
			return nil, apperrors.NewUpstreamFailure("post store", err)
		}
		if found != nil {
			items = found
		}
		refs := make([]*domain.Post, len(items))
		for i := range items {
			refs[i] = &items[i]
		}
		if err := s.attachAuthors(ctx, refs...); err != nil {
			return nil, err
		}
	}

	return &PostPage{
		Posts: items,
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    size,
			TotalPosts:  total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

// GetPost returns a post the actor may read. Posts hidden from the actor are
// reported as not found.
func (s *PostService) GetPost(ctx context.Context, id string, actor domain.Actor) (*domain.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(actor, authz.ActionRead, post) {
		return nil, apperrors.NewNotFound("post", nil)
	}
	if err := s.attachAuthors(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePost validates and stores a new post, uploading its asset first.
func (s *PostService) CreatePost(ctx context.Context, input PostInput, actor domain.Actor, asset *AssetUpload) (*domain.Post, error) {
	if !actor.Authenticated() {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(actor, authz.ActionCreate, nil) {
		return nil, apperrors.NewForbidden("not allowed to create posts")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	details := map[string]any{}
	validateTitle(input.Title, details)
	validateContent(input.Content, details)
	s.validateAsset(asset, details)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details)
	}

	post := &domain.Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: actor.ID,
		Status:   domain.PostStatusDraft,
	}
	if input.Published {
		stamp := s.now()
		post.Status = domain.PostStatusPublished
		post.PublishedAt = &stamp
	}

	if asset != nil {
		ref, err := s.objects.Upload(ctx, asset.Data, asset.MimeType)
		if err != nil {
			return nil, apperrors.NewUpstreamFailure("object store", err)
		}
		post.Asset = &ref
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.Asset != nil {
			s.logger.Error("post not stored, uploaded asset orphaned",
				zap.String("external_id", post.Asset.ExternalID),
				zap.Error(err))
		}
		return nil, apperrors.NewUpstreamFailure("post store", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventPostCreated,
		ResourceID: post.ID,
		Actor:      eventActor(actor),
		Payload: events.PostCreatedPayload{
			AuthorID: post.AuthorID,
			Title:    post.Title,
			Status:   post.Status,
			HasAsset: post.Asset != nil,
		},
	})
	if post.IsPublished() {
		s.publishPublished(ctx, post, actor)
	}
	s.attachAuthorsBestEffort(ctx, post)
	return post, nil
}

// UpdatePost applies a partial update. A new asset is uploaded before the old one
// is removed, and the stored record is written once at the end.
func (s *PostService) UpdatePost(ctx context.Context, id string, changes PostChanges, actor domain.Actor, asset *AssetUpload) (*domain.Post, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(actor, authz.ActionRead, current) {
		return nil, apperrors.NewNotFound("post", nil)
	}
	if !authz.CanPerform(actor, authz.ActionUpdate, current) {
		return nil, apperrors.NewForbidden("not allowed to modify this post")
	}

	update := repository.PostUpdate{}
	var fields []string
	details := map[string]any{}
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		validateTitle(title, details)
		update.Title = &title
		fields = append(fields, "title")
	}
	if changes.Content != nil {
		content := strings.TrimSpace(*changes.Content)
		validateContent(content, details)
		update.Content = &content
		fields = append(fields, "content")
	}
	publishing := false
	if changes.Published != nil {
		switch {
		case *changes.Published && !current.IsPublished():
			status := domain.PostStatusPublished
			stamp := s.now()
			update.Status = &status
			update.PublishedAt = &stamp
			fields = append(fields, "status")
			publishing = true
		case !*changes.Published && current.IsPublished():
			details["published"] = "a published post cannot return to draft"
		}
	}
	s.validateAsset(asset, details)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details)
	}

	if asset == nil && update.Empty() {
		s.attachAuthorsBestEffort(ctx, current)
		return current, nil
	}

	if asset != nil {
		ref, err := s.objects.Upload(ctx, asset.Data, asset.MimeType)
		if err != nil {
			return nil, apperrors.NewUpstreamFailure("object store", err)
		}
		if current.Asset != nil {
			s.removeAsset(ctx, current.Asset.ExternalID, current.ID)
		}
		update.Asset = &ref
		fields = append(fields, "image")
	}

	updated, err := s.posts.Update(ctx, current.ID, update)
	if err != nil {
		if update.Asset != nil {
			s.discardUpload(ctx, current, update.Asset.ExternalID, err)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, apperrors.NewUpstreamFailure("post store", err)
	}
	s.attachAuthorsBestEffort(ctx, updated)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventPostUpdated,
		ResourceID: updated.ID,
		Actor:      eventActor(actor),
		Payload: events.PostUpdatedPayload{
			Fields:        fields,
			AssetReplaced: asset != nil && current.Asset != nil,
		},
	})
	if publishing {
		s.publishPublished(ctx, updated, actor)
	}
	return updated, nil
}

// DeletePost removes a post and, best effort, its asset.
func (s *PostService) DeletePost(ctx context.Context, id string, actor domain.Actor) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanPerform(actor, authz.ActionRead, current) {
		return apperrors.NewNotFound("post", nil)
	}
	if !authz.CanPerform(actor, authz.ActionDelete, current) {
		return apperrors.NewForbidden("not allowed to delete this post")
	}

	if current.Asset != nil {
		s.removeAsset(ctx, current.Asset.ExternalID, current.ID)
	}

	deleted, err := s.posts.Delete(ctx, current.ID)
	if err != nil {
		return apperrors.NewUpstreamFailure("post store", err)
	}
	if !deleted {
		return apperrors.NewNotFound("post", nil)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventPostDeleted,
		ResourceID: current.ID,
		Actor:      eventActor(actor),
		Payload:    events.PostDeletedPayload{AuthorID: current.AuthorID},
	})
	return nil
}

// CanModify reports whether the actor may update the post. Missing posts yield false.
func (s *PostService) CanModify(ctx context.Context, id string, actor domain.Actor) (bool, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return authz.CanPerform(actor, authz.ActionUpdate, post), nil
}

func (s *PostService) load(ctx context.Context, id string) (*domain.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("post", nil)
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, apperrors.NewUpstreamFailure("post store", err)
	}
	return post, nil
}

// attachAuthors resolves the author of each post with one credential store lookup.
func (s *PostService) attachAuthors(ctx context.Context, posts ...*domain.Post) error {
	if s.users == nil || len(posts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		ids = append(ids, p.AuthorID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return apperrors.NewUpstreamFailure("credential store", err)
	}
	authors := make(map[string]*domain.PostAuthor, len(users))
	for i := range users {
		authors[users[i].ID] = users[i].Author()
	}
	for _, p := range posts {
		p.Author = authors[p.AuthorID]
	}
	return nil
}

// attachAuthorsBestEffort logs lookup failures instead of returning them; used after successful writes.
func (s *PostService) attachAuthorsBestEffort(ctx context.Context, post *domain.Post) {
	if err := s.attachAuthors(ctx, post); err != nil {
		s.logger.Warn("failed to resolve post author",
			zap.String("post_id", post.ID),
			zap.Error(err))
	}
}

func (s *PostService) removeAsset(ctx context.Context, externalID, postID string) {
	if err := s.objects.Delete(ctx, externalID); err != nil {
		s.logger.Warn("failed to delete post asset",
			zap.String("post_id", postID),
			zap.String("external_id", externalID),
			zap.Error(err))
	}
}

// discardUpload handles an asset uploaded for a post write that then failed.
// The asset is deleted best effort; if that fails it is logged as orphaned.
func (s *PostService) discardUpload(ctx context.Context, post *domain.Post, externalID string, cause error) {
	fields := []zap.Field{
		zap.String("post_id", post.ID),
		zap.String("external_id", externalID),
		zap.NamedError("cause", cause),
	}
	if post.Asset != nil {
		fields = append(fields, zap.String("previous_external_id", post.Asset.ExternalID))
	}
	if err := s.objects.Delete(ctx, externalID); err != nil {
		s.logger.Error("post not updated, uploaded asset orphaned", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Error("post not updated, uploaded asset discarded", fields...)
}

func (s *PostService) publishPublished(ctx context.Context, post *domain.Post, actor domain.Actor) {
	payload := events.PostPublishedPayload{AuthorID: post.AuthorID, Title: post.Title}
	if post.PublishedAt != nil {
		payload.PublishedAt = *post.PublishedAt
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventPostPublished,
		ResourceID: post.ID,
		Actor:      eventActor(actor),
		Payload:    payload,
	})
}

func (s *PostService) validateAsset(asset *AssetUpload, details map[string]any) {
	if asset == nil {
		return
	}
	switch {
	case len(asset.Data) == 0:
		details["image"] = "must not be empty"
	case !strings.HasPrefix(strings.ToLower(asset.MimeType), "image/"):
		details["image"] = "only image files are allowed"
	case int64(len(asset.Data)) > s.maxUploadBytes:
		details["image"] = fmt.Sprintf("must be at most %d bytes", s.maxUploadBytes)
	}
}

func validateTitle(title string, details map[string]any) {
	n := utf8.RuneCountInString(title)
	if n < minTitleLength || n > maxTitleLength {
		details["title"] = fmt.Sprintf("must be between %d and %d characters", minTitleLength, maxTitleLength)
	}
}

func validateContent(content string, details map[string]any) {
	if utf8.RuneCountInString(content) < minContentLength {
		details["content"] = fmt.Sprintf("must be at least %d characters", minContentLength)
	}
}
