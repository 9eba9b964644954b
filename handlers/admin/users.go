package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"github.com/sahilchouksey/admission-bridge/utils/validation"
	"gorm.io/gorm"
)

// sortable columns for ListUsers
var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"email":     "email",
}

// ListUsersRequest represents the query parameters for listing users
type ListUsersRequest struct {
	Page    int    `query:"page"`
	Limit   int    `query:"limit"`
	Role    string `query:"role"`
	Search  string `query:"search"`
	Sort    string `query:"sort"`
	SortDir string `query:"sortDir"`
}

// FinalizeRequest is the body of PUT /users/:studentId/finalize
type FinalizeRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"max=255"`
}

// ForwardRequest is the body of POST /users/forward
type ForwardRequest struct {
	StudentID uint     `json:"studentId" validate:"required,gt=0"`
	CollegeID uint     `json:"collegeId" validate:"required,gt=0"`
	Courses   []string `json:"courses" validate:"omitempty,dive,max=255"`
	Notes     string   `json:"notes" validate:"max=2000"`
}

// UserHandler handles the admin side of the admission workflow
type UserHandler struct {
	db         *gorm.DB
	admissions *services.AdmissionService
	validator  *validation.Validator
	log        *utils.Logger
}

// NewUserHandler creates a new admin user handler
func NewUserHandler(db *gorm.DB, admissions *services.AdmissionService, log *utils.Logger) *UserHandler {
	return &UserHandler{
		db:         db,
		admissions: admissions,
		validator:  validation.NewValidator(),
		log:        log,
	}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	var req ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	column, ok := userSortColumns[req.Sort]
	if !ok {
		column = "created_at"
	}
	if req.SortDir != "asc" {
		req.SortDir = "desc"
	}

	query := h.db.WithContext(c.UserContext()).Model(&model.User{})

	if req.Role != "" {
		role, err := model.ParseRole(req.Role)
		if err != nil || role == model.RoleCollege {
			return response.BadRequest(c, "Role must be student or admin")
		}
		query = query.Where("role = ?", role)
	}

	if search := strings.TrimSpace(req.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	var users []model.User
	if err := query.
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Order(column + " " + req.SortDir).
		Find(&users).Error; err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.Paginated(c, users, response.CalculatePagination(req.Page, req.Limit, total))
}

// GetUser handles GET /api/v1/users/:studentId
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	studentID, ok := handlers.ParamID(c, "studentId")
	if !ok {
		return response.BadRequest(c, "Invalid student ID")
	}

	detail, err := h.admissions.Detail(c.UserContext(), studentID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.Success(c, detail)
}

// Finalize handles PUT /api/v1/users/:studentId/finalize
func (h *UserHandler) Finalize(c *fiber.Ctx) error {
	studentID, ok := handlers.ParamID(c, "studentId")
	if !ok {
		return response.BadRequest(c, "Invalid student ID")
	}

	var req FinalizeRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	student, err := h.admissions.Finalize(c.UserContext(), studentID, req.Field, req.Value)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithMessage(c, "Student updated successfully", student)
}

// Forward handles POST /api/v1/users/forward
func (h *UserHandler) Forward(c *fiber.Ctx) error {
	var req ForwardRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	adminID, _ := middleware.GetUserID(c)
	shortlist, err := h.admissions.Forward(c.UserContext(), services.ForwardRequest{
		StudentID:        req.StudentID,
		CollegeProfileID: req.CollegeID,
		Courses:          req.Courses,
		Notes:            req.Notes,
		ForwardedBy:      adminID,
	})
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithMessage(c, "Student forwarded to college successfully", shortlist)
}
