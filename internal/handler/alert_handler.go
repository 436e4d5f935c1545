package handler

import (
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/internal/service"
	"go-techmart-analytics/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	alerts service.AlertService
}

func NewAlertHandler(alerts service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := repository.AlertFilter{
		Type:     model.AlertType(c.Query("alert_type")),
		Severity: model.AlertSeverity(c.Query("severity")),
		Skip:     queryInt(c, "skip", 0),
		Limit:    queryInt(c, "limit", 50),
	}
	if hours := queryInt(c, "hours", 0); hours > 0 {
		if hours > 168 {
			return respondError(c, apperr.Validation("hours must be between 1 and 168"))
		}
		since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		filter.Since = &since
	}

	list, err := h.alerts.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req service.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("Invalid JSON body"))
	}

	alert, err := h.alerts.Create(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(alert)
}

func (h *AlertHandler) SystemStatus(c *fiber.Ctx) error {
	status, err := h.alerts.SystemStatus()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}
