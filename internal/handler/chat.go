package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/repository"
	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

type ChatHandler struct {
	chatRepo *repository.ChatRepository
	teamRepo *repository.TeamRepository
	userRepo *repository.UserRepository
	hub      *service.Hub
	presence *service.PresenceService
	log      *logger.Logger
}

func NewChatHandler(chatRepo *repository.ChatRepository, teamRepo *repository.TeamRepository, userRepo *repository.UserRepository, hub *service.Hub, presence *service.PresenceService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, teamRepo: teamRepo, userRepo: userRepo, hub: hub, presence: presence, log: log}
}

// PostMessage stores a message and fans it out to the team's realtime
// subscribers, including the sender (whose client dedups by id).
// POST /api/v1/teams/:id/messages
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	teamID := c.Params("id")

	var req model.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content is required"})
	}
	if len(req.Content) > 4000 {
		return c.Status(400).JSON(fiber.Map{"error": "content exceeds 4000 characters"})
	}

	if _, err := h.teamRepo.GetMemberRole(c.Context(), teamID, userID); err != nil {
		return c.Status(403).JSON(fiber.Map{"error": "not a member of this team"})
	}

	msg := &model.ChatMessage{
		ID:       req.ID,
		TeamID:   teamID,
		SenderID: userID,
		Content:  req.Content,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	} else if _, err := uuid.Parse(msg.ID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "id must be a uuid"})
	}

	if err := h.chatRepo.InsertMessage(c.Context(), msg); err != nil {
		h.log.Errorw("store message failed", "team", teamID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to store message"})
	}

	if profile, err := h.userRepo.GetProfile(c.Context(), userID); err == nil {
		msg.SenderName = profile.DisplayName
	}

	data, _ := json.Marshal(msg)
	h.hub.BroadcastToTeam(teamID, &model.Event{
		Type:   model.EventNewMessage,
		TeamID: teamID,
		Data:   data,
	}, "")

	return c.Status(201).JSON(msg)
}

// GetHistory returns recent messages for a team, oldest first.
// GET /api/v1/teams/:id/messages?limit=50
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	teamID := c.Params("id")

	if _, err := h.teamRepo.GetMemberRole(c.Context(), teamID, userID); err != nil {
		return c.Status(403).JSON(fiber.Map{"error": "not a member of this team"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	msgs, err := h.chatRepo.GetHistory(c.Context(), teamID, limit)
	if err != nil {
		h.log.Errorw("history query failed", "team", teamID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get history"})
	}

	return c.JSON(fiber.Map{"messages": msgs})
}

// GetTyping returns who is typing in the team right now. Clients joining
// a channel mid-conversation use this to seed their typing indicator
// instead of waiting for the next realtime event.
// GET /api/v1/teams/:id/typing
func (h *ChatHandler) GetTyping(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	teamID := c.Params("id")

	if _, err := h.teamRepo.GetMemberRole(c.Context(), teamID, userID); err != nil {
		return c.Status(403).JSON(fiber.Map{"error": "not a member of this team"})
	}

	indicators, err := h.presence.GetTyping(c.Context(), teamID)
	if err != nil {
		h.log.Errorw("typing query failed", "team", teamID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get typing state"})
	}

	return c.JSON(fiber.Map{"typing": indicators})
}
