package handler

import (
	"strconv"

	"go-techmart-analytics/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the error taxonomy to a structured JSON error. Anything
// outside the taxonomy is reported as an internal error without leaking the
// cause.
func respondError(c *fiber.Ctx, err error) error {
	if e, ok := apperr.As(err); ok {
		return c.Status(e.HTTPStatus()).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    string(e.Kind),
				"message": e.Message,
			},
		})
	}
	return c.Status(500).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "INTERNAL_ERROR",
			"message": "Internal Server Error",
		},
	})
}

// queryInt parses an integer query param, falling back to def on absence or
// garbage. Range validation stays with the service layer.
func queryInt(c *fiber.Ctx, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
