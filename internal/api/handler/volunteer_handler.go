package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

// VolunteerHandler profile, documents, dashboard and calendar of the signed-in
// volunteer
type VolunteerHandler struct {
	volunteerSvc service.VolunteerService
	statsSvc     service.StatsService
	exportSvc    service.ExportService
}

// NewVolunteerHandler creates a VolunteerHandler
func NewVolunteerHandler(volunteerSvc service.VolunteerService, statsSvc service.StatsService, exportSvc service.ExportService) *VolunteerHandler {
	return &VolunteerHandler{
		volunteerSvc: volunteerSvc,
		statsSvc:     statsSvc,
		exportSvc:    exportSvc,
	}
}

// GetStats approved-hours dashboard
// GET /api/v1/me/stats
func (h *VolunteerHandler) GetStats(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.statsSvc.VolunteerStats(c.Request.Context(), volunteerID)
	if err != nil {
		handleVolunteerError(c, err)
		return
	}
	response.OK(c, result)
}

// GetProfile
// GET /api/v1/me/profile
func (h *VolunteerHandler) GetProfile(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.volunteerSvc.GetProfile(c.Request.Context(), volunteerID)
	if err != nil {
		handleVolunteerError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateProfile partial update
// PUT /api/v1/me/profile
func (h *VolunteerHandler) UpdateProfile(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "invalid profile: "+err.Error())
		return
	}

	result, err := h.volunteerSvc.UpdateProfile(c.Request.Context(), volunteerID, &req)
	if err != nil {
		handleVolunteerError(c, err)
		return
	}
	response.OK(c, result)
}

// UploadDocument stores the multipart "file" field as document :kind
// PUT /api/v1/me/documents/:kind
func (h *VolunteerHandler) UploadDocument(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "upload the document in a multipart field named file")
		return
	}
	defer file.Close()

	// one byte over the limit is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(file, service.MaxDocumentBytes+1))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "failed to read upload")
		return
	}

	result, err := h.volunteerSvc.UploadDocument(c.Request.Context(), volunteerID, c.Param("kind"), data)
	if err != nil {
		handleVolunteerError(c, err)
		return
	}
	response.OK(c, result)
}

// GetDocument streams document :kind back
// GET /api/v1/me/documents/:kind
func (h *VolunteerHandler) GetDocument(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, contentType, err := h.volunteerSvc.GetDocument(c.Request.Context(), volunteerID, c.Param("kind"))
	if err != nil {
		handleVolunteerError(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, contentType, data)
}

// Calendar every logged day as an iCalendar feed
// GET /api/v1/me/calendar.ics
func (h *VolunteerHandler) Calendar(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.VolunteerCalendar(c.Request.Context(), volunteerID)
	if err != nil {
		handleVolunteerError(c, err)
		return
	}
	sendFile(c, filename, "text/calendar; charset=utf-8", buf.Bytes())
}

func handleVolunteerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVolunteerNotFound):
		response.NotFound(c, 12001, "volunteer not found")
	case errors.Is(err, service.ErrInvalidDocumentKind):
		response.BadRequest(c, 12002, "document kind must be passport_photo, aadhar or pan")
	case errors.Is(err, service.ErrDocumentTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 12003, "document exceeds 2 MiB")
	case errors.Is(err, service.ErrDocumentEmpty):
		response.BadRequest(c, 12004, "document is empty")
	case errors.Is(err, service.ErrDocumentType):
		response.Error(c, http.StatusUnsupportedMediaType, 12005, "document must be a JPEG, PNG or PDF file")
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, 12006, "document not uploaded")
	case errors.Is(err, service.ErrInvalidDateOfBirth):
		response.BadRequest(c, 12007, "date_of_birth must be YYYY-MM-DD")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11005, "email already exists")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.FromError(c, err)
	}
}
