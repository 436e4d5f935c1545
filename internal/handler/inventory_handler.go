package handler

import (
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/internal/service"
	"go-techmart-analytics/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	products  repository.ProductRepository
	analytics service.AnalyticsService
	lowStock  int
}

func NewInventoryHandler(products repository.ProductRepository, analytics service.AnalyticsService, lowStockThreshold int) *InventoryHandler {
	return &InventoryHandler{products: products, analytics: analytics, lowStock: lowStockThreshold}
}

func (h *InventoryHandler) Products(c *fiber.Ctx) error {
	category := c.Query("category")
	if category != "" {
		exists, err := h.products.CategoryExists(category)
		if err != nil {
			return respondError(c, apperr.Database(err))
		}
		if !exists {
			return respondError(c, apperr.NotFound("Category", category))
		}
	}

	var supplierID *uuid.UUID
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, apperr.Validation("Invalid supplier ID"))
		}
		supplierID = &id
	}

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 100)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	products, total, err := h.products.FindAll(category, supplierID, skip, limit)
	if err != nil {
		return respondError(c, apperr.Database(err))
	}
	return c.JSON(fiber.Map{"items": products, "total": total})
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := queryInt(c, "threshold", h.lowStock)

	products, err := h.analytics.LowStockProducts(threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}
