package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

type InsightHandler struct {
	insightSvc *service.InsightService
}

func NewInsightHandler(insightSvc *service.InsightService) *InsightHandler {
	return &InsightHandler{insightSvc: insightSvc}
}

// Analyze returns a mock AI analysis for the given payload.
// POST /api/v1/insights
func (h *InsightHandler) Analyze(c *fiber.Ctx) error {
	var req model.InsightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Type == "" {
		return c.Status(400).JSON(fiber.Map{"error": "type is required"})
	}

	return c.JSON(h.insightSvc.Analyze(&req))
}
