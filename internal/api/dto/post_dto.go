package dto

import (
	"time"

	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/render"
	"github.com/spec-kit/content-service/internal/service"
)

// CreatePostRequest payload.
type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// UpdatePostRequest payload; omitted fields are left unchanged.
type UpdatePostRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

// ImageResponse references a post's media.
type ImageResponse struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// AuthorResponse identifies the author of a post.
type AuthorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// PostResponse is the public view of a post.
type PostResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	ContentHTML string            `json:"content_html"`
	AuthorID    string            `json:"author_id"`
	Author      *AuthorResponse   `json:"author"`
	Status      domain.PostStatus `json:"status"`
	Published   bool              `json:"published"`
	PublishedAt *time.Time        `json:"published_at"`
	Image       *ImageResponse    `json:"image"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PaginationResponse describes the page within the full listing.
type PaginationResponse struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPosts  int  `json:"total_posts"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// PostListResponse is one page of posts.
type PostListResponse struct {
	Posts      []PostResponse     `json:"posts"`
	Pagination PaginationResponse `json:"pagination"`
}

// PermissionsResponse reports what the caller may do with a post.
type PermissionsResponse struct {
	CanModify bool `json:"can_modify"`
}

// NewPostResponse maps a post to its response.
func NewPostResponse(p *domain.Post) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: render.Markdown(p.Content),
		AuthorID:    p.AuthorID,
		Status:      p.Status,
		Published:   p.IsPublished(),
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Author != nil {
		resp.Author = &AuthorResponse{
			ID:        p.Author.ID,
			FirstName: p.Author.FirstName,
			LastName:  p.Author.LastName,
			Email:     p.Author.Email,
		}
	}
	if p.Asset != nil {
		resp.Image = &ImageResponse{PublicID: p.Asset.ExternalID, URL: p.Asset.URL}
	}
	return resp
}

// NewPostListResponse maps a page of posts.
func NewPostListResponse(page *service.PostPage) PostListResponse {
	items := make([]PostResponse, 0, len(page.Posts))
	for i := range page.Posts {
		items = append(items, NewPostResponse(&page.Posts[i]))
	}
	p := page.Pagination
	return PostListResponse{
		Posts: items,
		Pagination: PaginationResponse{
			CurrentPage: p.CurrentPage,
			PageSize:    p.PageSize,
			TotalPosts:  p.TotalPosts,
			TotalPages:  p.TotalPages,
			HasNext:     p.HasNext,
			HasPrev:     p.HasPrev,
		},
	}
}
