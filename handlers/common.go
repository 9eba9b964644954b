package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"github.com/sahilchouksey/admission-bridge/utils/validation"
)

// Bind parses the JSON body into req and validates it. When it returns false
// the error response has already been written and err must be returned as is.
func Bind(c *fiber.Ctx, v *validation.Validator, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := v.ValidateStruct(req); err != nil {
		return false, response.ValidationError(c, err)
	}
	return true, nil
}

// ParamID parses a positive numeric route parameter
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ServiceError maps service sentinel errors onto the response envelope.
// Unclassified errors are logged and reported as 500.
func ServiceError(c *fiber.Ctx, log *utils.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return response.Conflict(c, err.Error())
	default:
		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return response.InternalServerError(c, "")
	}
}
