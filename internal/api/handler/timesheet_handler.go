package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

// TimesheetHandler weekly grid of the signed-in volunteer
type TimesheetHandler struct {
	svc service.TimesheetService
	now func() time.Time
}

// NewTimesheetHandler creates a TimesheetHandler
func NewTimesheetHandler(svc service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{svc: svc, now: time.Now}
}

// CurrentWeek grid of the week containing today
// GET /api/v1/timesheets/weeks/current
func (h *TimesheetHandler) CurrentWeek(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.LoadWeek(c.Request.Context(), volunteerID, h.now())
	if err != nil {
		handleTimesheetError(c, err)
		return
	}
	response.OK(c, result)
}

// GetWeek grid of the week containing :week_start
// GET /api/v1/timesheets/weeks/:week_start
func (h *TimesheetHandler) GetWeek(c *gin.Context) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	anchor, err := service.ParseWeekStart(c.Param("week_start"))
	if err != nil {
		handleTimesheetError(c, err)
		return
	}

	result, err := h.svc.LoadWeek(c.Request.Context(), volunteerID, anchor)
	if err != nil {
		handleTimesheetError(c, err)
		return
	}
	response.OK(c, result)
}

// SaveWeek stores the grid as Saved
// PUT /api/v1/timesheets/weeks/:week_start
func (h *TimesheetHandler) SaveWeek(c *gin.Context) {
	h.store(c, model.StatusSaved)
}

// SubmitWeek stores the grid as Pending for admin review
// POST /api/v1/timesheets/weeks/:week_start/submit
func (h *TimesheetHandler) SubmitWeek(c *gin.Context) {
	h.store(c, model.StatusPending)
}

func (h *TimesheetHandler) store(c *gin.Context, status string) {
	volunteerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	anchor, err := service.ParseWeekStart(c.Param("week_start"))
	if err != nil {
		handleTimesheetError(c, err)
		return
	}

	var req dto.SaveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14002, "each grid row needs a project and exactly 7 hour values")
		return
	}

	result, err := h.svc.SaveWeek(c.Request.Context(), volunteerID, anchor, &req, status)
	if err != nil {
		handleTimesheetError(c, err)
		return
	}

	msg := "timesheet saved"
	if status == model.StatusPending {
		msg = "timesheet submitted for approval"
	}
	response.OKMessage(c, msg, result)
}

func handleTimesheetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidWeekStart):
		response.BadRequest(c, 14001, "week start must be a YYYY-MM-DD date")
	case errors.Is(err, service.ErrHoursOutOfRange):
		response.BadRequest(c, 14002, "hours per day must not exceed 24")
	case errors.Is(err, service.ErrInvalidGrid):
		response.BadRequest(c, 14002, "each grid row needs exactly 7 hour values")
	case errors.Is(err, service.ErrInvalidTargetStatus):
		response.BadRequest(c, 14003, "timesheets can only be saved or submitted")
	case errors.Is(err, service.ErrProjectNameBlank):
		response.BadRequest(c, 13004, "project name is required")
	default:
		response.FromError(c, err)
	}
}
