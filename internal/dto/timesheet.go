package dto

// ── week grid DTOs ──

// GridRowRequest one project slot; Hours[i] is the hours for week_start+i
type GridRowRequest struct {
	Project string    `json:"project" binding:"max=255"`
	Hours   []float64 `json:"hours"   binding:"len=7,dive,lte=24"`
}

// SaveWeekRequest the edited grid
type SaveWeekRequest struct {
	Rows []GridRowRequest `json:"rows" binding:"max=100,dive"`
}

// SaveWeekResponse outcome of a save or submit
type SaveWeekResponse struct {
	WeekStart       string   `json:"week_start"`
	Status          string   `json:"status"`
	Inserted        int      `json:"inserted"`
	Updated         int      `json:"updated"`
	Locked          int      `json:"locked"` // approved cells left untouched
	CreatedProjects []string `json:"created_projects,omitempty"`
}

// GridDayResponse column header
type GridDayResponse struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Label   string `json:"label"`
}

// GridRowResponse one project slot; a blank slot has an empty project
type GridRowResponse struct {
	Project  string    `json:"project"`
	Hours    []float64 `json:"hours"`
	Statuses []string  `json:"statuses"`
}

// WeekGridResponse the week window
type WeekGridResponse struct {
	WeekStart   string            `json:"week_start"`
	WeekEnd     string            `json:"week_end"`
	PrevWeek    string            `json:"prev_week"`
	NextWeek    string            `json:"next_week"`
	Days        []GridDayResponse `json:"days"`
	Rows        []GridRowResponse `json:"rows"`
	DailyTotals []float64         `json:"daily_totals"`
	WeekTotal   float64           `json:"week_total"`
}

// ── review DTOs ──

// TimesheetResponse one fact with names resolved
type TimesheetResponse struct {
	ID            int64   `json:"id"`
	VolunteerID   int64   `json:"volunteer_pk"`
	VolunteerCode string  `json:"volunteer_id"`
	FirstName     string  `json:"first_name,omitempty"`
	LastName      string  `json:"last_name,omitempty"`
	ProjectID     int64   `json:"project_id"`
	ProjectName   string  `json:"project_name"`
	Date          string  `json:"date"`
	Hours         float64 `json:"hours"`
	Status        string  `json:"status"`
	SubmittedAt   string  `json:"submitted_at"`
	ApprovedAt    string  `json:"approved_at,omitempty"`
}

// ApproveBatchRequest approve several facts
type ApproveBatchRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,max=500,dive,min=1"`
}

// ApproveBatchResponse batch outcome
type ApproveBatchResponse struct {
	Approved        int64 `json:"approved"`
	AlreadyApproved int   `json:"already_approved"`
}

// ApprovedFilterRequest approved-hours query
type ApprovedFilterRequest struct {
	PaginationRequest
	VolunteerCode string `form:"volunteer_id" binding:"omitempty,max=20"`
	ProjectName   string `form:"project"      binding:"omitempty,max=255"`
	StartDate     string `form:"start_date"   binding:"omitempty,datetime=2006-01-02"`
	EndDate       string `form:"end_date"     binding:"omitempty,datetime=2006-01-02"`
}

// ApprovedListResponse approved rows and their total
type ApprovedListResponse struct {
	List       []TimesheetResponse `json:"list"`
	Total      int64               `json:"total"`
	TotalHours float64             `json:"total_hours"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}
