package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"gorm.io/gorm"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshToken handles POST /api/v1/auth/refresh.
// The presented refresh token is revoked and a new pair is issued.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	ctx := c.UserContext()
	isRevoked, err := h.blacklistService.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	version, err := h.blacklistService.GetTokenVersion(ctx, claims.UserID, claims.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Unauthorized(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to load account")
	}
	if version != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	tokens, err := h.jwtManager.GenerateTokenPair(claims.UserID, claims.Email, claims.Role, version)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	if err := h.blacklistService.RevokeToken(ctx, claims.ID, claims.UserID, claims.Role, claims.ExpiresAt.Time, "token_refresh"); err != nil {
		// the old token still expires on its own
		h.log.Warn("failed to revoke refreshed token", "error", err)
	}

	return response.Success(c, tokens)
}

// Logout handles POST /api/v1/auth/logout by blacklisting the access token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.blacklistService.RevokeToken(c.UserContext(), claims.ID, claims.UserID, claims.Role, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	return response.SuccessWithMessage(c, "Successfully logged out", nil)
}

// LogoutAll handles POST /api/v1/auth/logout-all by bumping the token version
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if err := h.blacklistService.RevokeAllTokens(c.UserContext(), claims.UserID, claims.Role); err != nil {
		return response.InternalServerError(c, "Failed to revoke sessions")
	}

	return response.SuccessWithMessage(c, "All sessions revoked", nil)
}

// Me handles GET /api/v1/auth/me for any principal
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	if role, _ := middleware.GetUserRole(c); role == model.RoleCollege {
		college, ok := middleware.GetCollege(c)
		if !ok {
			return response.Unauthorized(c, "Not authenticated")
		}
		return response.Success(c, fiber.Map{"role": role, "college": college})
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, fiber.Map{"role": user.Role, "user": user})
}
