package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/repository"
	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

const readDeadline = 60 * time.Second

type WSHandler struct {
	hub      *service.Hub
	presence *service.PresenceService
	authSvc  *service.AuthService
	teamRepo *repository.TeamRepository
	userRepo *repository.UserRepository
	log      *logger.Logger
}

func NewWSHandler(hub *service.Hub, presence *service.PresenceService, authSvc *service.AuthService, teamRepo *repository.TeamRepository, userRepo *repository.UserRepository, log *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, presence: presence, authSvc: authSvc, teamRepo: teamRepo, userRepo: userRepo, log: log}
}

// Upgrade authenticates via token query param and hands the connection
// to the realtime loop. GET /ws?token=...&team_id=...
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return c.Status(401).JSON(fiber.Map{"error": "token required"})
	}

	userID, _, err := h.authSvc.ValidateAccessToken(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
	}

	teamID := c.Query("team_id")
	if teamID != "" {
		if _, err := h.teamRepo.GetMemberRole(c.Context(), teamID, userID); err != nil {
			return c.Status(403).JSON(fiber.Map{"error": "not a member of this team"})
		}
	}

	displayName := userID
	if p, err := h.userRepo.GetProfile(c.Context(), userID); err == nil {
		displayName = p.DisplayName
	}

	c.Locals("user_id", userID)
	c.Locals("display_name", displayName)
	c.Locals("team_id", teamID)
	return websocket.New(h.handleConnection)(c)
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)
	displayName, _ := c.Locals("display_name").(string)
	teamID, _ := c.Locals("team_id").(string)

	client := &service.HubClient{
		Conn:        c,
		UserID:      userID,
		DisplayName: displayName,
		Send:        make(chan []byte, 256),
	}
	client.SetTeam(teamID)

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Writer goroutine
	go func() {
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	c.SetReadDeadline(time.Now().Add(readDeadline))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}
		c.SetReadDeadline(time.Now().Add(readDeadline))

		var event model.Event
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case model.EventPing:
			pong, _ := json.Marshal(model.Event{Type: model.EventPong})
			select {
			case client.Send <- pong:
			default:
			}

		case model.EventSubscribe:
			var sub model.SubscribePayload
			if err := json.Unmarshal(event.Data, &sub); err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_, memberErr := h.teamRepo.GetMemberRole(ctx, sub.TeamID, userID)
			cancel()
			if memberErr != nil {
				continue
			}
			if prev := client.SetTeam(sub.TeamID); prev != "" && prev != sub.TeamID {
				h.clearTyping(client, prev)
			}

		case model.EventTyping:
			h.handleTyping(client, &event)

		default:
			h.log.Debugw("unknown event type", "type", event.Type, "user", displayName)
		}
	}
}

// clearTyping drops the user's typing state for a team they are leaving
// so the indicator does not linger for the remaining subscribers.
func (h *WSHandler) clearTyping(client *service.HubClient, teamID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ind := &model.TypingIndicator{TeamID: teamID, UserID: client.UserID, IsTyping: false}
	if err := h.presence.SetTyping(ctx, ind); err != nil {
		h.log.Warnw("presence clear failed", "user", client.UserID, "team", teamID, "error", err)
	}
}

// handleTyping records the state in redis and rebroadcasts to the rest
// of the team. The sender's own indicator is never echoed back.
func (h *WSHandler) handleTyping(client *service.HubClient, event *model.Event) {
	var ind model.TypingIndicator
	if err := json.Unmarshal(event.Data, &ind); err != nil {
		return
	}

	// Never trust client-supplied identity on typing frames
	ind.UserID = client.UserID
	ind.DisplayName = client.DisplayName
	ind.TeamID = client.Team()
	if ind.TeamID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := h.presence.SetTyping(ctx, &ind); err != nil {
		h.log.Warnw("presence update failed", "user", client.UserID, "error", err)
	}
	cancel()

	data, _ := json.Marshal(ind)
	h.hub.BroadcastToTeam(ind.TeamID, &model.Event{
		Type:   model.EventTyping,
		TeamID: ind.TeamID,
		Data:   data,
	}, client.UserID)
}
