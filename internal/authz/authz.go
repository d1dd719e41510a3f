// Package authz decides whether an actor may perform an action on a post.
// Decisions read only the actor and the already-loaded post.
package authz

import "github.com/spec-kit/content-service/internal/domain"

// Action is an operation an actor attempts on a post.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CanPerform reports whether actor may perform action on post.
// For ActionCreate the post is the resource-to-be and may be nil.
func CanPerform(actor domain.Actor, action Action, post *domain.Post) bool {
	if actor.IsAdmin() {
		return true
	}

	switch action {
	case ActionCreate:
		return actor.Authenticated()
	case ActionRead:
		if post == nil {
			return false
		}
		if post.IsPublished() {
			return true
		}
		return actor.Authenticated() && post.OwnedBy(actor.ID)
	case ActionUpdate, ActionDelete:
		if post == nil {
			return false
		}
		return actor.Authenticated() && post.OwnedBy(actor.ID)
	default:
		return false
	}
}
