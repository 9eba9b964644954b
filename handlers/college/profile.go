package college

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/sahilchouksey/admission-bridge/utils/response"
	"github.com/sahilchouksey/admission-bridge/utils/validation"
)

// CollegeHandler handles the endpoints a college account uses to manage itself
type CollegeHandler struct {
	profiles   *services.CollegeProfileService
	media      *services.ProfileMediaService
	shortlists *services.ShortlistService
	validator  *validation.Validator
	log        *utils.Logger
}

// NewCollegeHandler creates a new college handler
func NewCollegeHandler(
	profiles *services.CollegeProfileService,
	media *services.ProfileMediaService,
	shortlists *services.ShortlistService,
	log *utils.Logger,
) *CollegeHandler {
	return &CollegeHandler{
		profiles:   profiles,
		media:      media,
		shortlists: shortlists,
		validator:  validation.NewValidator(),
		log:        log,
	}
}

// CreateProfile handles POST /api/v1/college-admins/profile
func (h *CollegeHandler) CreateProfile(c *fiber.Ctx) error {
	collegeID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req services.ProfileInput
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	profile, err := h.profiles.Create(c.UserContext(), collegeID, req)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.Created(c, profile)
}

// GetProfile handles GET /api/v1/college-admins/profile
func (h *CollegeHandler) GetProfile(c *fiber.Ctx) error {
	collegeID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	profile, err := h.profiles.Get(c.UserContext(), collegeID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.Success(c, profile)
}

// UpdateProfile handles PUT /api/v1/college-admins/profile
func (h *CollegeHandler) UpdateProfile(c *fiber.Ctx) error {
	collegeID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req services.ProfileUpdate
	if ok, err := handlers.Bind(c, h.validator, &req); !ok {
		return err
	}

	profile, err := h.profiles.Update(c.UserContext(), collegeID, req)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", profile)
}

// DeleteProfile handles DELETE /api/v1/college-admins/profile
func (h *CollegeHandler) DeleteProfile(c *fiber.Ctx) error {
	return response.NotImplemented(c, "Profile deletion is not available")
}

// UploadLogo handles POST /api/v1/college-admins/profile/logo
func (h *CollegeHandler) UploadLogo(c *fiber.Ctx) error {
	return h.upload(c, services.MediaLogo)
}

// UploadCoverPhoto handles POST /api/v1/college-admins/profile/cover-photo
func (h *CollegeHandler) UploadCoverPhoto(c *fiber.Ctx) error {
	return h.upload(c, services.MediaCoverPhoto)
}

func (h *CollegeHandler) upload(c *fiber.Ctx, kind services.MediaKind) error {
	collegeID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	file, err := header.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to open file")
	}
	defer file.Close()

	asset, err := h.media.Upload(c.UserContext(), collegeID, kind, services.MediaUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithMessage(c, "Upload successful", asset)
}

// ForwardedStudents handles GET /api/v1/college-admins/forwarded-students
func (h *CollegeHandler) ForwardedStudents(c *fiber.Ctx) error {
	collegeID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	ctx := c.UserContext()
	profileID, err := h.profiles.ProfileIDForCollege(ctx, collegeID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	students, err := h.shortlists.ListForwardedToCollege(ctx, profileID)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}

	return response.SuccessWithFields(c, fiber.StatusOK, "", nil, fiber.Map{"students": students})
}
