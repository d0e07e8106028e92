package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

type HealthHandler struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	hub  *service.Hub
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, hub *service.Hub) *HealthHandler {
	return &HealthHandler{pool: pool, rdb: rdb, hub: hub}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "connections": h.hub.OnlineCount()})
}

// Ready checks both backing stores: chat rows live in Postgres, typing
// presence lives in Redis.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "error": "database unreachable"})
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "error": "redis unreachable"})
	}

	return c.JSON(fiber.Map{"status": "ready"})
}
