package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils"
	authutil "github.com/sahilchouksey/admission-bridge/utils/auth"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"github.com/sahilchouksey/admission-bridge/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests for students, admins and colleges
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	log                  *utils.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, log *utils.Logger) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
		log:                  log,
	}
}

// RegisterRequest represents a student registration request
type RegisterRequest struct {
	Name        string            `json:"name" validate:"required,min=2,max=255"`
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password" validate:"required,min=8"`
	Phone       string            `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth *time.Time        `json:"dateOfBirth"`
	Education   []model.Education `json:"education"`
}

// CollegeRegisterRequest represents an institution registration request
type CollegeRegisterRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	InstituteCode string `json:"instituteCode" validate:"required,institutecode"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	ContactNumber string `json:"contactNumber" validate:"omitempty,max=30"`
}

// UserAuthResponse is returned after a student or admin authenticates
type UserAuthResponse struct {
	User *model.User `json:"user"`
	*authutil.TokenPair
}

// CollegeAuthResponse is returned after a college authenticates
type CollegeAuthResponse struct {
	College *model.College `json:"college"`
	*authutil.TokenPair
}

// Register handles POST /api/v1/auth/register (students only)
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	if ok, problems := validation.ValidatePassword(req.Password); !ok {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Password does not meet requirements", "WEAK_PASSWORD", strings.Join(problems, "; "))
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		Name:         validation.SanitizeString(req.Name),
		Role:         model.RoleStudent,
		Phone:        strings.TrimSpace(req.Phone),
		DateOfBirth:  req.DateOfBirth,
		Education:    datatypes.JSONSlice[model.Education](req.Education),
	}

	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "User with this email already exists")
		}
		h.log.Error("failed to create user", "error", err)
		return response.InternalServerError(c, "Failed to create user")
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Created(c, UserAuthResponse{User: &user, TokenPair: tokens})
}

// RegisterCollege handles POST /api/v1/auth/college/register
func (h *AuthHandler) RegisterCollege(c *fiber.Ctx) error {
	var req CollegeRegisterRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	college := model.College{
		Name:          validation.SanitizeString(req.Name),
		InstituteCode: strings.ToUpper(strings.TrimSpace(req.InstituteCode)),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  hashedPassword,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
	}

	if err := h.db.WithContext(c.UserContext()).Create(&college).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "A college with this email or institute code already exists")
		}
		h.log.Error("failed to create college", "error", err)
		return response.InternalServerError(c, "Failed to create college")
	}

	tokens, err := h.jwtManager.GenerateTokenPair(college.ID, college.Email, model.RoleCollege, college.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Created(c, CollegeAuthResponse{College: &college, TokenPair: tokens})
}
