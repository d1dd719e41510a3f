package domain

import "time"

// Actor is the caller of a request, derived from a verified session token.
type Actor struct {
	ID   string
	Role Role
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor {
	return Actor{Role: RoleViewer}
}

// Authenticated reports whether the actor carries a verified identity.
func (a Actor) Authenticated() bool {
	return a.ID != "" && (a.Role == RoleUser || a.Role == RoleAdmin)
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}

// SessionToken is a signed bearer token and its expiry.
type SessionToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
