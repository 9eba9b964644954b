package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils/auth"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

var (
	errMissingToken     = errors.New("Missing authorization token")
	errBadFormat        = errors.New("Invalid authorization format")
	errWrongTokenType   = errors.New("Invalid token type")
	errRevoked          = errors.New("Token has been revoked")
	errPrincipalMissing = errors.New("Account not found")
	errInvalidated      = errors.New("Token has been invalidated")
)

// authenticate validates the bearer token and stores the principal in Locals.
// Students and admins resolve to a model.User, colleges to a model.College.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (int, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return fiber.StatusUnauthorized, errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return fiber.StatusUnauthorized, errBadFormat
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return fiber.StatusUnauthorized, errors.New("Token has expired")
		}
		return fiber.StatusUnauthorized, errors.New("Invalid token")
	}

	if claims.TokenType != auth.TokenTypeAccess {
		return fiber.StatusUnauthorized, errWrongTokenType
	}

	ctx := c.UserContext()
	isRevoked, err := m.blacklistService.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return fiber.StatusInternalServerError, errors.New("Failed to check token status")
	}
	if isRevoked {
		return fiber.StatusUnauthorized, errRevoked
	}

	var tokenVersion int
	switch claims.Role {
	case model.RoleCollege:
		var college model.College
		if err := m.db.WithContext(ctx).First(&college, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.StatusUnauthorized, errPrincipalMissing
			}
			return fiber.StatusInternalServerError, errors.New("Failed to load account")
		}
		tokenVersion = college.TokenVersion
		c.Locals("college", &college)
	default:
		var user model.User
		if err := m.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.StatusUnauthorized, errPrincipalMissing
			}
			return fiber.StatusInternalServerError, errors.New("Failed to load account")
		}
		// the stored role wins over a stale token
		if user.Role != claims.Role {
			return fiber.StatusUnauthorized, errInvalidated
		}
		tokenVersion = user.TokenVersion
		c.Locals("user", &user)
	}

	if tokenVersion != claims.TokenVersion {
		return fiber.StatusUnauthorized, errInvalidated
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_role", claims.Role)
	c.Locals("claims", claims)

	return 0, nil
}

func deny(c *fiber.Ctx, status int, err error) error {
	if status == fiber.StatusInternalServerError {
		return response.InternalServerError(c, err.Error())
	}
	return response.Unauthorized(c, err.Error())
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if status, err := m.authenticate(c); err != nil {
			return deny(c, status, err)
		}
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles.
// It must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := GetUserRole(c)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}

		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin authenticates the request and requires the admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if status, err := m.authenticate(c); err != nil {
			return deny(c, status, err)
		}

		if role, _ := GetUserRole(c); role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		return c.Next()
	}
}

// GetUserID extracts the principal ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetUserRole extracts the principal role from context
func GetUserRole(c *fiber.Ctx) (model.Role, bool) {
	r, ok := c.Locals("user_role").(model.Role)
	return r, ok
}

// GetUser extracts the student or admin account from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals("user").(*model.User)
	return u, ok
}

// GetCollege extracts the college account from context
func GetCollege(c *fiber.Ctx) (*model.College, bool) {
	col, ok := c.Locals("college").(*model.College)
	return col, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claimsData, ok := c.Locals("claims").(*auth.Claims)
	return claimsData, ok
}
