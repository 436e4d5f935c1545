package handler

import (
	"go-techmart-analytics/internal/service"
	"go-techmart-analytics/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// HourlySales serves the gap-free hourly breakdown. The public endpoint is
// capped at one week; wider windows exist only for internal dashboard use.
func (h *AnalyticsHandler) HourlySales(c *fiber.Ctx) error {
	hours := queryInt(c, "hours", 24)
	if hours < 1 || hours > 168 {
		return respondError(c, apperr.Validation("hours must be between 1 and 168"))
	}

	buckets, err := h.analytics.SalesByHour(hours)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(buckets)
}

func (h *AnalyticsHandler) SalesTrends(c *fiber.Ctx) error {
	days := queryInt(c, "days", 30)

	trends, err := h.analytics.SalesTrends(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(trends)
}

func (h *AnalyticsHandler) CustomerBehavior(c *fiber.Ctx) error {
	behavior, err := h.analytics.CustomerBehavior()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(behavior)
}

func (h *AnalyticsHandler) ProductPerformance(c *fiber.Ctx) error {
	days := queryInt(c, "days", 30)
	category := c.Query("category")

	performance, err := h.analytics.ProductPerformance(days, category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(performance)
}

func (h *AnalyticsHandler) Geographic(c *fiber.Ctx) error {
	days := queryInt(c, "days", 30)

	geo, err := h.analytics.GeographicAnalytics(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(geo)
}
