package directory

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/handlers"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/response"
)

// DirectoryHandler serves the public college directory
type DirectoryHandler struct {
	directory *services.DirectoryService
	log       *utils.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directory *services.DirectoryService, log *utils.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, log: log}
}

// ListColleges handles GET /api/v1/colleges
func (h *DirectoryHandler) ListColleges(c *fiber.Ctx) error {
	entries, err := h.directory.ListDirectory(c.UserContext())
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}
	return response.Success(c, entries)
}

// GetCollege handles GET /api/v1/colleges/:id
func (h *DirectoryHandler) GetCollege(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid college ID")
	}

	entry, err := h.directory.GetEntry(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, h.log, err)
	}
	return response.Success(c, entry)
}
