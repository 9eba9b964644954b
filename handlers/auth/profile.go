package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"github.com/sahilchouksey/admission-bridge/utils/validation"
	"gorm.io/datatypes"
)

// UpdateProfileRequest represents a profile update request; nil fields are unchanged
type UpdateProfileRequest struct {
	Name        *string            `json:"name" validate:"omitempty,min=2,max=255"`
	Phone       *string            `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth *time.Time         `json:"dateOfBirth"`
	Education   *[]model.Education `json:"education"`
}

// GetProfile handles GET /api/v1/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, user)
}

// UpdateProfile handles PUT /api/v1/profile.
// Admission fields (counselor, finalized choices) are admin-only and not accepted here.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = validation.SanitizeString(*req.Name)
	}
	if req.Phone != nil {
		updates["phone"] = validation.SanitizeString(*req.Phone)
	}
	if req.DateOfBirth != nil {
		updates["date_of_birth"] = *req.DateOfBirth
	}
	if req.Education != nil {
		updates["education"] = datatypes.JSONSlice[model.Education](*req.Education)
	}

	ctx := c.UserContext()
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	var updated model.User
	if err := h.db.WithContext(ctx).Take(&updated, user.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", updated)
}
