package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/repository"
	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

type ProfileHandler struct {
	userRepo *repository.UserRepository
	authSvc  *service.AuthService
	log      *logger.Logger
}

func NewProfileHandler(userRepo *repository.UserRepository, authSvc *service.AuthService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo, authSvc: authSvc, log: log}
}

// Get returns the caller's own profile.
// GET /api/v1/profile
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	profile, err := h.userRepo.GetProfile(c.Context(), userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
	}
	return c.JSON(profile)
}

// Update changes display name and/or avatar; omitted fields are kept.
// PUT /api/v1/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req model.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed == "" {
			return c.Status(400).JSON(fiber.Map{"error": "display name cannot be empty"})
		}
		req.DisplayName = &trimmed
	}

	if err := h.userRepo.UpdateProfile(c.Context(), userID, req.DisplayName, req.AvatarURL); err != nil {
		h.log.Errorw("profile update failed", "user", userID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update profile"})
	}

	profile, err := h.userRepo.GetProfile(c.Context(), userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load profile"})
	}
	return c.JSON(profile)
}

// ChangePassword requires the current password in the body.
// PUT /api/v1/profile/password
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req model.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.authSvc.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return authError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
