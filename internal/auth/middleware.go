package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-service/internal/domain"
	apperrors "github.com/spec-kit/content-service/pkg/util"
)

const (
	actorKey = "auth_actor"
	tokenKey = "auth_token"
)

// TokenVerifier turns a bearer token into an actor.
type TokenVerifier interface {
	VerifyToken(token string) (domain.Actor, error)
}

// AuthMiddleware validates bearer tokens and attaches the actor to the request.
// The role comes from the token claim; the account is not re-read.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	if raw == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	return m.attach(c, raw)
}

// Optional attaches the actor of a valid bearer token. A missing, malformed or
// expired token leaves the request anonymous.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	raw, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil || raw == "" {
		c.Locals(actorKey, domain.Anonymous())
		return c.Next()
	}
	actor, err := m.verifier.VerifyToken(raw)
	if err != nil {
		c.Locals(actorKey, domain.Anonymous())
		return c.Next()
	}
	c.Locals(actorKey, actor)
	c.Locals(tokenKey, raw)
	return c.Next()
}

func (m *AuthMiddleware) attach(c *fiber.Ctx, raw string) error {
	actor, err := m.verifier.VerifyToken(raw)
	if err != nil {
		return err
	}
	c.Locals(actorKey, actor)
	c.Locals(tokenKey, raw)
	return c.Next()
}

// BearerToken extracts the token from an Authorization header value.
// An empty header yields an empty token and no error.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// ActorFromContext retrieves the caller; requests without one are anonymous.
func ActorFromContext(c *fiber.Ctx) domain.Actor {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	if !ok {
		return domain.Anonymous()
	}
	return actor
}

// TokenFromContext returns the raw bearer token of an authenticated request.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok && token != ""
}
