package handler

import (
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/service"
	"go-techmart-analytics/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	transactions service.TransactionService
	analytics    service.AnalyticsService
}

func NewTransactionHandler(transactions service.TransactionService, analytics service.AnalyticsService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, analytics: analytics}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("Invalid JSON body"))
	}

	resp, err := h.transactions.Create(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(resp)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	transactions, total, err := h.transactions.List(skip, limit)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]model.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, transactions[i].ToResponse())
	}
	return c.JSON(fiber.Map{"items": items, "total": total})
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, apperr.Validation("Invalid transaction ID"))
	}

	t, err := h.transactions.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t.ToResponse())
}

// Suspicious returns the retrospective batch sweep over the trailing window.
func (h *TransactionHandler) Suspicious(c *fiber.Ctx) error {
	hours := queryInt(c, "hours", 24)
	if hours < 1 || hours > 168 {
		return respondError(c, apperr.Validation("hours must be between 1 and 168"))
	}

	suspicious, err := h.analytics.DetectSuspicious(time.Duration(hours) * time.Hour)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suspicious)
}

func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, apperr.Validation("Invalid transaction ID"))
	}

	var body struct {
		Status model.TransactionStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("Invalid JSON body"))
	}

	t, err := h.transactions.UpdateStatus(id, body.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t.ToResponse())
}
