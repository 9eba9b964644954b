package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/database"
	"github.com/sahilchouksey/admission-bridge/utils/response"
)

// HandleCheckHealth handles GET /api/v1/ping
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.ServiceUnavailable(c, "Database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
