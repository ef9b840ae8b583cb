package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

// ProjectHandler project catalogue
type ProjectHandler struct {
	svc service.ProjectService
}

// NewProjectHandler creates a ProjectHandler
func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// ListProjects every project sorted by name
// GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleProjectError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateProject
// POST /api/v1/admin/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13004, "project name is required")
		return
	}

	result, err := h.svc.Create(c.Request.Context(), adminID, &req)
	if err != nil {
		handleProjectError(c, err)
		return
	}
	response.Created(c, result)
}

// DeleteProject refuses while hours reference the project
// DELETE /api/v1/admin/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleProjectError(c, err)
		return
	}
	response.OKMessage(c, "project deleted", nil)
}

func handleProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 13001, "project not found")
	case errors.Is(err, service.ErrProjectExists):
		response.Conflict(c, 13002, "project already exists")
	case errors.Is(err, service.ErrProjectInUse):
		response.Conflict(c, 13003, "cannot delete project that has hours logged against it")
	case errors.Is(err, service.ErrProjectNameBlank):
		response.BadRequest(c, 13004, "project name is required")
	default:
		response.FromError(c, err)
	}
}
