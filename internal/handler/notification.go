package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/repository"
)

type NotificationHandler struct {
	notifyRepo *repository.NotificationRepository
	log        *logger.Logger
}

func NewNotificationHandler(notifyRepo *repository.NotificationRepository, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifyRepo: notifyRepo, log: log}
}

// List returns the caller's unexpired notifications, newest first.
// GET /api/v1/notifications?limit=50
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	items, err := h.notifyRepo.ListForUser(c.Context(), userID, limit)
	if err != nil {
		h.log.Errorw("list notifications failed", "user", userID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list notifications"})
	}

	return c.JSON(fiber.Map{"notifications": items})
}

// MarkRead is idempotent: marking an unknown or already-read id succeeds.
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.notifyRepo.MarkRead(c.Context(), userID, c.Params("id")); err != nil {
		h.log.Errorw("mark read failed", "user", userID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to mark notification read"})
	}

	return c.JSON(fiber.Map{"ok": true})
}
