package dto

// ── statistics DTOs ──

// DateHours hours on a date, or in the week starting on it
type DateHours struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// ProjectHours hours per project
type ProjectHours struct {
	Project string  `json:"project"`
	Hours   float64 `json:"hours"`
}

// VolunteerStatsResponse approved-hours dashboard of one volunteer
type VolunteerStatsResponse struct {
	VolunteerCode     string         `json:"volunteer_id"`
	TotalHours        float64        `json:"total_hours"`
	MostActiveProject string         `json:"most_active_project"`
	AvgWeeklyHours    float64        `json:"avg_weekly_hours"`
	WeeksActive       int            `json:"weeks_active"`
	ProjectsInvolved  int            `json:"projects_involved"`
	Daily             []DateHours    `json:"daily"`
	Weekly            []DateHours    `json:"weekly"`
	Projects          []ProjectHours `json:"projects"`
}

// VolunteerSummaryResponse admin volunteer list row
type VolunteerSummaryResponse struct {
	ID            int64   `json:"id"`
	VolunteerCode string  `json:"volunteer_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Email         string  `json:"email"`
	TotalHours    float64 `json:"total_hours"`
	ProjectCount  int64   `json:"project_count"`
}
