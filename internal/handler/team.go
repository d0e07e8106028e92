package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

type TeamHandler struct {
	teamSvc *service.TeamService
}

func NewTeamHandler(teamSvc *service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

func (h *TeamHandler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req model.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	team, err := h.teamSvc.Create(c.Context(), userID, &req)
	if err != nil {
		return teamError(c, err)
	}

	return c.Status(201).JSON(team)
}

func (h *TeamHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	teams, err := h.teamSvc.ListForUser(c.Context(), userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list teams"})
	}

	return c.JSON(fiber.Map{"teams": teams})
}

func (h *TeamHandler) Get(c *fiber.Ctx) error {
	team, err := h.teamSvc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return teamError(c, err)
	}
	return c.JSON(team)
}

func (h *TeamHandler) Members(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	members, err := h.teamSvc.Members(c.Context(), c.Params("id"), userID)
	if err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"members": members})
}

func (h *TeamHandler) Join(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.teamSvc.Join(c.Context(), c.Params("id"), userID); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *TeamHandler) Leave(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.teamSvc.Leave(c.Context(), c.Params("id"), userID); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *TeamHandler) SetRole(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.teamSvc.SetRole(c.Context(), c.Params("id"), userID, c.Params("uid"), req.Role); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *TeamHandler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req model.UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.teamSvc.Update(c.Context(), c.Params("id"), userID, &req); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.teamSvc.Delete(c.Context(), c.Params("id"), userID); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func teamError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotTeamMember):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotTeamAdmin):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyMember):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTeam), errors.Is(err, service.ErrLastAdminLeave):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
