package handler

import "github.com/abygeorge8848/VolunteeringPortal/internal/service"

// Handler every HTTP handler, grouped by module
type Handler struct {
	Auth      *AuthHandler
	Timesheet *TimesheetHandler
	Volunteer *VolunteerHandler
	Project   *ProjectHandler
	Admin     *AdminHandler
	Export    *ExportHandler
}

// NewHandler builds the handlers over the service aggregate
func NewHandler(svc *service.Service, cookie *CookieOptions) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, svc.Reset, cookie),
		Timesheet: NewTimesheetHandler(svc.Timesheet),
		Volunteer: NewVolunteerHandler(svc.Volunteer, svc.Stats, svc.Export),
		Project:   NewProjectHandler(svc.Project),
		Admin:     NewAdminHandler(svc.Admin, svc.Approval),
		Export:    NewExportHandler(svc.Export),
	}
}
