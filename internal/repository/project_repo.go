package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// ProjectRepository project access
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	GetByName(ctx context.Context, name string) (*model.Project, error)
	// FirstOrCreateByName returns the project with exactly this name, inserting
	// it when absent. created reports whether this call inserted the row.
	FirstOrCreateByName(ctx context.Context, name string, createdBy *int64) (p *model.Project, created bool, err error)
	List(ctx context.Context) ([]model.Project, error)
	Delete(ctx context.Context, id int64) error
	CountTimesheets(ctx context.Context, projectID int64) (int64, error)
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo creates a ProjectRepository
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetByName(ctx context.Context, name string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FirstOrCreateByName uses INSERT ... ON CONFLICT (name) DO NOTHING so two
// saves racing on a new name both end up with the same row.
func (r *projectRepo) FirstOrCreateByName(ctx context.Context, name string, createdBy *int64) (*model.Project, bool, error) {
	p := model.Project{Name: name, CreatedBy: createdBy}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&p)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return &p, true, nil
	}

	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *projectRepo) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Project{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepo) CountTimesheets(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
