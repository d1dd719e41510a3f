package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-service/internal/api/dto"
	"github.com/spec-kit/content-service/internal/auth"
	"github.com/spec-kit/content-service/internal/service"
	apperrors "github.com/spec-kit/content-service/pkg/util"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	identity service.Identity
}

// NewProfileHandler constructs handler.
func NewProfileHandler(identity service.Identity) *ProfileHandler {
	return &ProfileHandler{identity: identity}
}

// Get handles GET /api/users/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	profile, err := h.identity.GetProfile(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(profile)})
}

// Update handles PUT /api/users/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.identity.UpdateProfile(c.UserContext(), actor.ID, service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(profile)})
}
