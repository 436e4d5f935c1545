package handler

import (
	"go-techmart-analytics/internal/service"
	"go-techmart-analytics/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CustomerHandler struct {
	customers service.CustomerService
}

func NewCustomerHandler(customers service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page, err := h.customers.List(
		c.Query("search"),
		queryInt(c, "skip", 0),
		queryInt(c, "limit", 50),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, apperr.Validation("Invalid customer ID"))
	}

	detail, err := h.customers.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}
