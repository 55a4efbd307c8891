package middleware

import (
	"fmt"
	apimodels "grc-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

// WithBodyLimit per-route cap below the app-wide body limit
func WithBodyLimit(limit int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		size := int64(c.Request().Header.ContentLength())
		if size < 0 {
			// chunked, only the received body tells
			size = int64(len(c.Body()))
		}
		if size > limit {
			return c.Status(fiber.StatusRequestEntityTooLarge).
				JSON(apimodels.NewError(fmt.Sprintf("Request body too large. Maximum allowed: %d bytes", limit)))
		}
		return c.Next()
	}
}
