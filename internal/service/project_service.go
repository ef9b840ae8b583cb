package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	pkgerrors "github.com/abygeorge8848/VolunteeringPortal/pkg/errors"
)

// ── project errors ──

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrProjectInUse     = errors.New("cannot delete project that has hours logged against it")
	ErrProjectNameBlank = errors.New("project name is required")
)

// ProjectService project catalogue
type ProjectService interface {
	List(ctx context.Context) ([]dto.ProjectResponse, error)
	Create(ctx context.Context, adminID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, id int64) error
}

type projectService struct {
	repo   *repository.Repository
	cache  *projectCache
	logger *zap.Logger
}

// NewProjectService creates a ProjectService
func NewProjectService(repo *repository.Repository, cache *projectCache, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *projectService) List(ctx context.Context) ([]dto.ProjectResponse, error) {
	projects, ok := s.cache.get(ctx)
	if !ok {
		var err error
		projects, err = s.repo.Project.List(ctx)
		if err != nil {
			s.logger.Error("list projects failed", zap.Error(err))
			return nil, err
		}
		s.cache.put(ctx, projects)
	}

	out := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, *toProjectResponse(&projects[i]))
	}
	return out, nil
}

// ────────────────────── Create ──────────────────────

func (s *projectService) Create(ctx context.Context, adminID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrProjectNameBlank
	}

	existing, err := s.repo.Project.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("get project failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrProjectExists
	}

	project := &model.Project{Name: name, CreatedBy: &adminID}
	if err := s.repo.Project.Create(ctx, project); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrProjectExists
		}
		s.logger.Error("create project failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.cache.invalidate(ctx)
	s.logger.Info("project created", zap.Int64("project_id", project.ID), zap.String("name", name))

	return toProjectResponse(project), nil
}

// ────────────────────── Delete ──────────────────────

// Delete refuses while any timesheet references the project. The foreign key
// is RESTRICT, so a fact inserted between the check and the delete still fails.
func (s *projectService) Delete(ctx context.Context, id int64) error {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		s.logger.Error("get project failed", zap.Int64("project_id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Project.CountTimesheets(ctx, project.ID)
	if err != nil {
		s.logger.Error("count project timesheets failed", zap.Int64("project_id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrProjectInUse
	}

	if err := s.repo.Project.Delete(ctx, project.ID); err != nil {
		switch {
		case pkgerrors.IsForeignKeyViolation(err):
			return ErrProjectInUse
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrProjectNotFound
		}
		s.logger.Error("delete project failed", zap.Int64("project_id", id), zap.Error(err))
		return err
	}

	s.cache.invalidate(ctx)
	s.logger.Info("project deleted", zap.Int64("project_id", id), zap.String("name", project.Name))
	return nil
}

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
