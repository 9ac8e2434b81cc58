package handlers

import (
	"context"

	"github.com/arzan03/FileShare/internal/middleware"
	"github.com/arzan03/FileShare/internal/services"
	"github.com/gofiber/fiber/v2"
)

type StatsService interface {
	OwnerStats(ctx context.Context, owner string) (services.OwnerStats, error)
	SystemStats(ctx context.Context) (services.SystemStats, error)
}

type StatsHandler struct {
	stats StatsService
}

func NewStatsHandler(stats StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// UserStats reports the caller's file count and bytes stored.
func (h *StatsHandler) UserStats(c *fiber.Ctx) error {
	stats, err := h.stats.OwnerStats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"files":        stats.Files,
		"totalStorage": stats.TotalStorage,
	})
}

// SystemStats is unauthenticated.
func (h *StatsHandler) SystemStats(c *fiber.Ctx) error {
	stats, err := h.stats.SystemStats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"users":        stats.Users,
		"files":        stats.Files,
		"totalStorage": stats.TotalStorage,
		"activeUsers":  stats.ActiveUsers,
	})
}
