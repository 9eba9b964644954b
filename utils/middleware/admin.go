package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils"
	"gorm.io/gorm"
)

// AdminAuditLog records an audit entry for an admin action after the handler runs.
// It must run after RequireAdmin. Write failures are logged and never fail the request.
func AdminAuditLog(db *gorm.DB, log *utils.Logger, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, ok := GetUserID(c)
		if !ok {
			return c.Next()
		}

		var resourceID uint
		for _, param := range []string{"studentId", "id"} {
			if raw := c.Params(param); raw != "" {
				if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil {
					resourceID = uint(parsed)
					break
				}
			}
		}

		// fiber reuses the request buffers, so copy before c.Next
		body := string(c.Body())
		ip := c.IP()
		userAgent := strings.Clone(c.Get("User-Agent"))
		description := c.Method() + " " + c.Path()

		err := c.Next()

		entry := model.AdminAuditLog{
			AdminID:     adminID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			NewValue:    body,
			StatusCode:  c.Response().StatusCode(),
			IPAddress:   ip,
			UserAgent:   userAgent,
			Description: description,
		}

		go func() {
			if dbErr := db.WithContext(context.Background()).Create(&entry).Error; dbErr != nil {
				log.Warn("failed to write admin audit log", "action", action, "error", dbErr)
			}
		}()

		return err
	}
}
