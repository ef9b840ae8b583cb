package model

import "time"

// Timesheet statuses. Saved → Pending → Approved, never back.
const (
	StatusSaved    = "Saved"
	StatusPending  = "Pending"
	StatusApproved = "Approved"
)

// Timesheet one (volunteer, project, date) hours fact
type Timesheet struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"                     json:"id"`
	VolunteerID int64      `gorm:"not null"                                     json:"volunteer_id"`
	ProjectID   int64      `gorm:"not null"                                     json:"project_id"`
	Date        time.Time  `gorm:"type:date;not null"                           json:"date"`
	Hours       float64    `gorm:"type:numeric(5,2);not null"                   json:"hours"`
	Status      string     `gorm:"type:varchar(20);not null;default:'Pending'"  json:"status"`
	SubmittedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"submitted_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ApprovedBy  *int64     `json:"approved_by,omitempty"`

	Volunteer *Volunteer `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Project   *Project   `gorm:"foreignKey:ProjectID"   json:"project,omitempty"`
}

// TableName table name
func (Timesheet) TableName() string { return "timesheets" }

// IsApproved approved facts are locked against edits
func (t *Timesheet) IsApproved() bool { return t.Status == StatusApproved }

// ProjectName name of the preloaded project, or ""
func (t *Timesheet) ProjectName() string {
	if t.Project == nil {
		return ""
	}
	return t.Project.Name
}
