package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Check is a dependency probe; nil means the dependency is not configured.
type Check func(ctx context.Context) error

type HealthHandler struct {
	db    Check
	redis Check
}

func NewHealthHandler(db, redis Check) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        probe(ctx, h.db),
	}
	if h.redis != nil {
		resp.Redis = probe(ctx, h.redis)
	}

	if resp.DB != "ok" || (resp.Redis != "" && resp.Redis != "ok") {
		resp.Status = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func probe(ctx context.Context, check Check) string {
	if check == nil {
		return "not configured"
	}
	if err := check(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}
