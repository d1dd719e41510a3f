package events

import (
	"time"

	"github.com/spec-kit/content-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventPostCreated    EventType = "post_created"
	EventPostUpdated    EventType = "post_updated"
	EventPostPublished  EventType = "post_published"
	EventPostDeleted    EventType = "post_deleted"
)

// AllEventTypes lists every event the service emits.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventPostCreated,
	EventPostUpdated,
	EventPostPublished,
	EventPostDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PostCreatedPayload payload.
type PostCreatedPayload struct {
	AuthorID string            `json:"author_id"`
	Title    string            `json:"title"`
	Status   domain.PostStatus `json:"status"`
	HasAsset bool              `json:"has_asset"`
}

// PostUpdatedPayload payload.
type PostUpdatedPayload struct {
	Fields        []string `json:"fields"`
	AssetReplaced bool     `json:"asset_replaced"`
}

// PostPublishedPayload payload.
type PostPublishedPayload struct {
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// PostDeletedPayload payload.
type PostDeletedPayload struct {
	AuthorID string `json:"author_id"`
}
