package utils

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/database"
	"github.com/sahilchouksey/admission-bridge/utils/response"
)

// MakeHTTPHandleFunc adapts a handler that needs the storage into a fiber handler.
// Errors the handler did not already answer are reported in the standard envelope.
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			return response.InternalServerError(c, err.Error())
		}
		return nil
	}
}
