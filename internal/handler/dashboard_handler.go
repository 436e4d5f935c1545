package handler

import (
	"go-techmart-analytics/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// Overview returns the combined dashboard metrics for a time range
// (24h, 7d, 30d, 90d).
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	timeRange := c.Query("time_range", "24h")

	overview, err := h.service.Overview(timeRange)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(overview)
}
