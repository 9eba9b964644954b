package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/model"
	authutil "github.com/sahilchouksey/admission-bridge/utils/auth"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"gorm.io/gorm"
)

// LoginRequest represents a login request for any account type
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login for students and admins
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	var user model.User
	err := h.db.WithContext(c.UserContext()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		Take(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to load account")
	}

	if err != nil || authutil.VerifyPassword(user.PasswordHash, req.Password) != nil {
		_ = h.bruteForceProtection.RecordFailedAttempt(c)
		return response.Unauthorized(c, "Invalid email or password")
	}

	h.bruteForceProtection.RecordSuccessfulAttempt(c)

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, UserAuthResponse{User: &user, TokenPair: tokens})
}

// LoginCollege handles POST /api/v1/auth/college/login
func (h *AuthHandler) LoginCollege(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	var college model.College
	err := h.db.WithContext(c.UserContext()).
		Preload("Profile").
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		Take(&college).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to load account")
	}

	if err != nil || authutil.VerifyPassword(college.PasswordHash, req.Password) != nil {
		_ = h.bruteForceProtection.RecordFailedAttempt(c)
		return response.Unauthorized(c, "Invalid email or password")
	}

	h.bruteForceProtection.RecordSuccessfulAttempt(c)

	tokens, err := h.jwtManager.GenerateTokenPair(college.ID, college.Email, model.RoleCollege, college.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, CollegeAuthResponse{College: &college, TokenPair: tokens})
}
