package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

// AdminHandler review queue, approvals and volunteer management
type AdminHandler struct {
	adminSvc    service.AdminService
	approvalSvc service.ApprovalService
}

// NewAdminHandler creates an AdminHandler
func NewAdminHandler(adminSvc service.AdminService, approvalSvc service.ApprovalService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, approvalSvc: approvalSvc}
}

// ListPending every Pending entry, newest first
// GET /api/v1/admin/timesheets/pending
func (h *AdminHandler) ListPending(c *gin.Context) {
	list, err := h.adminSvc.ListPending(c.Request.Context())
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.OK(c, list)
}

// Approve one entry
// PUT /api/v1/admin/timesheets/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.approvalSvc.Approve(c.Request.Context(), adminID, id)
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.OKMessage(c, "timesheet approved", result)
}

// ApproveBatch approves every listed entry or none
// POST /api/v1/admin/timesheets/approve
func (h *AdminHandler) ApproveBatch(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApproveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "ids must list 1 to 500 timesheet ids")
		return
	}

	result, err := h.approvalSvc.ApproveBatch(c.Request.Context(), adminID, req.IDs)
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.OK(c, result)
}

// ListApproved filtered approved hours with their total
// GET /api/v1/admin/timesheets/approved
func (h *AdminHandler) ListApproved(c *gin.Context) {
	var req dto.ApprovedFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "invalid filter: "+err.Error())
		return
	}

	result, err := h.adminSvc.ListApproved(c.Request.Context(), &req)
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.OK(c, result)
}

// ListVolunteers every volunteer with approved-hour totals
// GET /api/v1/admin/volunteers
func (h *AdminHandler) ListVolunteers(c *gin.Context) {
	list, err := h.adminSvc.ListVolunteers(c.Request.Context())
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.OK(c, list)
}

// DeleteVolunteer removes the account and its hours
// DELETE /api/v1/admin/volunteers/:id
func (h *AdminHandler) DeleteVolunteer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminSvc.DeleteVolunteer(c.Request.Context(), id); err != nil {
		handleAdminError(c, err)
		return
	}
	response.OKMessage(c, "volunteer deleted", nil)
}

func handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimesheetNotFound):
		response.NotFound(c, 15001, "timesheet entry not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 15002, "end_date must not be before start_date")
	case errors.Is(err, service.ErrVolunteerNotFound):
		response.NotFound(c, 12001, "volunteer not found")
	default:
		response.FromError(c, err)
	}
}
