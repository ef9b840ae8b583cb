package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// documentColumns are large and only read by the document endpoints
var documentColumns = []string{"passport_photo", "aadhar_card", "pan_card"}

// VolunteerHoursSummary approved totals per volunteer
type VolunteerHoursSummary struct {
	VolunteerID   int64   `gorm:"column:volunteer_id"`
	VolunteerCode string  `gorm:"column:volunteer_code"`
	FirstName     string  `gorm:"column:first_name"`
	LastName      string  `gorm:"column:last_name"`
	Email         string  `gorm:"column:email"`
	TotalHours    float64 `gorm:"column:total_hours"`
	ProjectCount  int64   `gorm:"column:project_count"`
}

// VolunteerRepository volunteer account and profile access
type VolunteerRepository interface {
	Create(ctx context.Context, v *model.Volunteer) error
	GetByID(ctx context.Context, id int64) (*model.Volunteer, error)
	GetByUsername(ctx context.Context, username string) (*model.Volunteer, error)
	GetByEmail(ctx context.Context, email string) (*model.Volunteer, error)
	GetByCode(ctx context.Context, code string) (*model.Volunteer, error)
	AssignCode(ctx context.Context, id int64, code string) error
	UpdateProfile(ctx context.Context, v *model.Volunteer) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	GetDocument(ctx context.Context, id int64, column string) ([]byte, error)
	UpdateDocument(ctx context.Context, id int64, column string, data []byte) error
	// DocumentFlags reports per document column whether it holds data
	DocumentFlags(ctx context.Context, id int64) (map[string]bool, error)
	Delete(ctx context.Context, id int64) error
	SummarizeApprovedHours(ctx context.Context) ([]VolunteerHoursSummary, error)
}

type volunteerRepo struct {
	db *gorm.DB
}

// NewVolunteerRepo creates a VolunteerRepository
func NewVolunteerRepo(db *gorm.DB) VolunteerRepository {
	return &volunteerRepo{db: db}
}

func (r *volunteerRepo) Create(ctx context.Context, v *model.Volunteer) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *volunteerRepo) first(ctx context.Context, query string, arg interface{}) (*model.Volunteer, error) {
	var v model.Volunteer
	err := r.db.WithContext(ctx).
		Omit(documentColumns...).
		Where(query, arg).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *volunteerRepo) GetByID(ctx context.Context, id int64) (*model.Volunteer, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *volunteerRepo) GetByUsername(ctx context.Context, username string) (*model.Volunteer, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *volunteerRepo) GetByEmail(ctx context.Context, email string) (*model.Volunteer, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *volunteerRepo) GetByCode(ctx context.Context, code string) (*model.Volunteer, error) {
	return r.first(ctx, "volunteer_code = ?", code)
}

func (r *volunteerRepo) AssignCode(ctx context.Context, id int64, code string) error {
	return r.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Where("id = ?", id).
		Update("volunteer_code", code).Error
}

// UpdateProfile writes the editable columns; credentials and documents are untouched
func (r *volunteerRepo) UpdateProfile(ctx context.Context, v *model.Volunteer) error {
	res := r.db.WithContext(ctx).
		Model(v).
		Select(
			"email", "first_name", "last_name",
			"date_of_birth", "gender", "nationality", "phone", "address", "city", "state", "pincode",
			"occupation", "organization", "skills", "preferred_working_days", "fields_of_interest",
			"availability_hours", "emergency_contact_name", "emergency_contact_phone", "how_did_you_hear",
			"updated_at",
		).
		Updates(v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *volunteerRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *volunteerRepo) GetDocument(ctx context.Context, id int64, column string) ([]byte, error) {
	var rows []struct {
		Data []byte
	}
	err := r.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Select(column+" AS data").
		Where("id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0].Data, nil
}

func (r *volunteerRepo) UpdateDocument(ctx context.Context, id int64, column string, data []byte) error {
	res := r.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       data,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *volunteerRepo) DocumentFlags(ctx context.Context, id int64) (map[string]bool, error) {
	var row struct {
		PassportPhoto bool
		AadharCard    bool
		PanCard       bool
	}
	res := r.db.WithContext(ctx).
		Model(&model.Volunteer{}).
		Select(`COALESCE(octet_length(passport_photo), 0) > 0 AS passport_photo,
			COALESCE(octet_length(aadhar_card), 0) > 0 AS aadhar_card,
			COALESCE(octet_length(pan_card), 0) > 0 AS pan_card`).
		Where("id = ?", id).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return map[string]bool{
		"passport_photo": row.PassportPhoto,
		"aadhar_card":    row.AadharCard,
		"pan_card":       row.PanCard,
	}, nil
}

// Delete removes the volunteer; timesheets cascade
func (r *volunteerRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Volunteer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SummarizeApprovedHours every volunteer with approved hours and distinct
// approved projects, highest total first
func (r *volunteerRepo) SummarizeApprovedHours(ctx context.Context) ([]VolunteerHoursSummary, error) {
	var out []VolunteerHoursSummary
	err := r.db.WithContext(ctx).
		Table("volunteers v").
		Select(`v.id AS volunteer_id,
			COALESCE(v.volunteer_code, '') AS volunteer_code,
			v.first_name, v.last_name, v.email,
			COALESCE(SUM(t.hours), 0) AS total_hours,
			COUNT(DISTINCT t.project_id) AS project_count`).
		Joins("LEFT JOIN timesheets t ON t.volunteer_id = v.id AND t.status = ?", model.StatusApproved).
		Group("v.id").
		Order("total_hours DESC, v.id ASC").
		Scan(&out).Error
	return out, err
}
