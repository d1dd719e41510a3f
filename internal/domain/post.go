package domain

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	// PostStatusArchived is reserved; no operation transitions into or out of it.
	PostStatusArchived PostStatus = "archived"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// AssetRef identifies a post's media in the object store. Both fields are always set.
type AssetRef struct {
	ExternalID string
	URL        string
}

// PostAuthor is the public identity of a post's author.
type PostAuthor struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// Post is the core content entity.
type Post struct {
	ID          string
	Title       string
	Content     string
	AuthorID    string
	Status      PostStatus
	PublishedAt *time.Time
	Asset       *AssetRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Author is resolved on read and never stored with the post.
	Author *PostAuthor
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// OwnedBy reports whether the given identity authored the post.
func (p *Post) OwnedBy(id string) bool {
	return id != "" && p.AuthorID == id
}
