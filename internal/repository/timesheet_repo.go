package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// TimesheetFilter admin listing filters; zero values are ignored
type TimesheetFilter struct {
	Status        string
	VolunteerID   int64
	VolunteerCode string
	ProjectName   string
	From          *time.Time
	To            *time.Time
}

// TimesheetRepository timesheet fact access
type TimesheetRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Timesheet, error)
	GetByKey(ctx context.Context, volunteerID, projectID int64, date time.Time) (*model.Timesheet, error)
	Create(ctx context.Context, t *model.Timesheet) error
	// UpdateEntry overwrites hours and status and stamps submitted_at
	UpdateEntry(ctx context.Context, id int64, hours float64, status string, submittedAt time.Time) error
	// ListByVolunteerRange facts with date in [from, to], project preloaded
	ListByVolunteerRange(ctx context.Context, volunteerID int64, from, to time.Time) ([]model.Timesheet, error)
	// ListByVolunteerStatus all facts of one status, project preloaded, oldest first
	ListByVolunteerStatus(ctx context.Context, volunteerID int64, status string) ([]model.Timesheet, error)
	// Approve sets Approved on the given ids and returns rows changed
	Approve(ctx context.Context, ids []int64, adminID int64, at time.Time) (int64, error)
	List(ctx context.Context, f TimesheetFilter, offset, limit int) ([]model.Timesheet, int64, error)
	SumHours(ctx context.Context, f TimesheetFilter) (float64, error)
}

type timesheetRepo struct {
	db *gorm.DB
}

// NewTimesheetRepo creates a TimesheetRepository
func NewTimesheetRepo(db *gorm.DB) TimesheetRepository {
	return &timesheetRepo{db: db}
}

func (r *timesheetRepo) GetByID(ctx context.Context, id int64) (*model.Timesheet, error) {
	var t model.Timesheet
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *timesheetRepo) GetByKey(ctx context.Context, volunteerID, projectID int64, date time.Time) (*model.Timesheet, error) {
	var t model.Timesheet
	err := r.db.WithContext(ctx).
		Where("volunteer_id = ? AND project_id = ? AND date = ?", volunteerID, projectID, date.Format(model.DateLayout)).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *timesheetRepo) Create(ctx context.Context, t *model.Timesheet) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *timesheetRepo) UpdateEntry(ctx context.Context, id int64, hours float64, status string, submittedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"hours":        hours,
			"status":       status,
			"submitted_at": submittedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *timesheetRepo) ListByVolunteerRange(ctx context.Context, volunteerID int64, from, to time.Time) ([]model.Timesheet, error) {
	var out []model.Timesheet
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("volunteer_id = ? AND date BETWEEN ? AND ?",
			volunteerID, from.Format(model.DateLayout), to.Format(model.DateLayout)).
		Order("date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *timesheetRepo) ListByVolunteerStatus(ctx context.Context, volunteerID int64, status string) ([]model.Timesheet, error) {
	var out []model.Timesheet
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("volunteer_id = ? AND status = ?", volunteerID, status).
		Order("date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *timesheetRepo) Approve(ctx context.Context, ids []int64, adminID int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("id IN ? AND status <> ?", ids, model.StatusApproved).
		Updates(map[string]interface{}{
			"status":      model.StatusApproved,
			"approved_at": at,
			"approved_by": adminID,
		})
	return res.RowsAffected, res.Error
}

func (r *timesheetRepo) filtered(ctx context.Context, f TimesheetFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Joins("JOIN volunteers ON volunteers.id = timesheets.volunteer_id").
		Joins("JOIN projects ON projects.id = timesheets.project_id")

	if f.Status != "" {
		q = q.Where("timesheets.status = ?", f.Status)
	}
	if f.VolunteerID != 0 {
		q = q.Where("timesheets.volunteer_id = ?", f.VolunteerID)
	}
	if f.VolunteerCode != "" {
		q = q.Where("volunteers.volunteer_code = ?", f.VolunteerCode)
	}
	if f.ProjectName != "" {
		q = q.Where("projects.name = ?", f.ProjectName)
	}
	if f.From != nil {
		q = q.Where("timesheets.date >= ?", f.From.Format(model.DateLayout))
	}
	if f.To != nil {
		q = q.Where("timesheets.date <= ?", f.To.Format(model.DateLayout))
	}
	return q
}

// List newest first; limit <= 0 returns every match
func (r *timesheetRepo) List(ctx context.Context, f TimesheetFilter, offset, limit int) ([]model.Timesheet, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, f).
		Preload("Project").
		Preload("Volunteer", func(db *gorm.DB) *gorm.DB {
			return db.Omit(documentColumns...)
		}).
		Order("timesheets.date DESC, timesheets.id DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}

	var out []model.Timesheet
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *timesheetRepo) SumHours(ctx context.Context, f TimesheetFilter) (float64, error) {
	var total float64
	err := r.filtered(ctx, f).
		Select("COALESCE(SUM(timesheets.hours), 0)").
		Scan(&total).Error
	return total, err
}
