package shortlist

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"github.com/sahilchouksey/admission-bridge/utils/validation"
)

// ShortlistHandler handles shortlist endpoints for students, colleges and admins
type ShortlistHandler struct {
	shortlists *services.ShortlistService
	profiles   *services.CollegeProfileService
	validator  *validation.Validator
	log        *utils.Logger
}

// NewShortlistHandler creates a new shortlist handler
func NewShortlistHandler(shortlists *services.ShortlistService, profiles *services.CollegeProfileService, log *utils.Logger) *ShortlistHandler {
	return &ShortlistHandler{
		shortlists: shortlists,
		profiles:   profiles,
		validator:  validation.NewValidator(),
		log:        log,
	}
}

// AddRequest is the body of POST /shortlists. A nil interestedCourses keeps
// the stored courses of an existing shortlist.
type AddRequest struct {
	CollegeID         uint                       `json:"collegeId" validate:"required,gt=0"`
	Notes             string                     `json:"notes" validate:"max=2000"`
	InterestedCourses []services.CourseSelection `json:"interestedCourses" validate:"omitempty,dive"`
}

// ToggleRequest is the body of POST /shortlists/toggle
type ToggleRequest struct {
	CollegeID         uint                       `json:"collegeId" validate:"required,gt=0"`
	InterestedCourses []services.CourseSelection `json:"interestedCourses" validate:"omitempty,dive"`
}

// MyShortlists handles GET /api/v1/shortlists/my-shortlists
func (h *ShortlistHandler) MyShortlists(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	records, err := h.shortlists.ListForStudent(c.UserContext(), studentID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithFields(c, fiber.StatusOK, "", nil, fiber.Map{"shortlists": records})
}

// List handles GET /api/v1/shortlists. Admins pass ?student=<id> to view another student.
func (h *ShortlistHandler) List(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	role, _ := middleware.GetUserRole(c)
	if role == model.RoleAdmin {
		id, err := strconv.ParseUint(c.Query("student"), 10, 32)
		if err != nil || id == 0 {
			return response.BadRequest(c, "Query parameter student is required for admins")
		}
		studentID = uint(id)
	}

	records, err := h.shortlists.ListForStudent(c.UserContext(), studentID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.Success(c, records)
}

// Add handles POST /api/v1/shortlists
func (h *ShortlistHandler) Add(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req AddRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.shortlists.AddOrUpdateInterest(c.UserContext(), studentID, req.CollegeID, req.Notes, req.InterestedCourses)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	status, message := fiber.StatusOK, "College already shortlisted"
	if result.Created {
		status, message = fiber.StatusCreated, "College shortlisted successfully"
	} else if req.InterestedCourses != nil {
		message = "Shortlist courses updated"
	}

	return response.SuccessWithFields(c, status, message, result.Shortlist, fiber.Map{
		"aggregatedCourses": result.AggregatedCourses,
	})
}

// Toggle handles POST /api/v1/shortlists/toggle
func (h *ShortlistHandler) Toggle(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req ToggleRequest
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.shortlists.ToggleInterest(c.UserContext(), studentID, req.CollegeID, req.InterestedCourses)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	message := "Removed from shortlist"
	if result.Shortlisted {
		message = "Added to shortlist"
	}

	// data stays in the body as null when the shortlist was removed
	return response.SuccessWithFields(c, fiber.StatusOK, message, result.Shortlist, fiber.Map{
		"shortlisted":       result.Shortlisted,
		"aggregatedCourses": result.AggregatedCourses,
	})
}

// Remove handles DELETE /api/v1/shortlists/:collegeId
func (h *ShortlistHandler) Remove(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	collegeID, ok := handlers.ParamID(c, "collegeId")
	if !ok {
		return response.BadRequest(c, "Invalid college ID")
	}

	if err := h.shortlists.RemoveInterest(c.UserContext(), studentID, collegeID); err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithMessage(c, "Removed from shortlist", nil)
}

// Stats handles GET /api/v1/shortlists/stats/aggregate (admin)
func (h *ShortlistHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.shortlists.StatsAcrossColleges(c.UserContext())
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}
	return response.Success(c, stats)
}

// CollegeInterest handles GET /api/v1/shortlists/college[/:collegeAdminId].
// Colleges may only view their own profile; admins must name one.
func (h *ShortlistHandler) CollegeInterest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	role, _ := middleware.GetUserRole(c)
	requested, hasParam := handlers.ParamID(c, "collegeAdminId")
	if c.Params("collegeAdminId") != "" && !hasParam {
		return response.BadRequest(c, "Invalid college ID")
	}

	var profileID uint
	switch role {
	case model.RoleCollege:
		collegeID, _ := middleware.GetUserID(c)
		own, err := h.profiles.ProfileIDForCollege(ctx, collegeID)
		if err != nil {
			return handlers.ServiceError(c, h.log, err)
		}
		if hasParam && requested != own {
			return response.Forbidden(c, "Colleges can only view their own shortlists")
		}
		profileID = own
	case model.RoleAdmin:
		if !hasParam {
			return response.BadRequest(c, "College ID is required")
		}
		profileID = requested
	default:
		return response.Forbidden(c, "Insufficient permissions")
	}

	interest, err := h.shortlists.CollegeInterest(ctx, profileID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithFields(c, fiber.StatusOK, "", nil, fiber.Map{
		"college":           interest.College,
		"count":             interest.Count,
		"students":          interest.Students,
		"aggregatedCourses": interest.AggregatedCourses,
	})
}
