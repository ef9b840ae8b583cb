package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
)

// ErrInvalidDateRange end date before start date
var ErrInvalidDateRange = errors.New("end_date must not be before start_date")

// AdminService review queues and volunteer management
type AdminService interface {
	// ListPending every Pending fact, newest first
	ListPending(ctx context.Context) ([]dto.TimesheetResponse, error)
	// ListApproved approved facts matching the filter, with their hour total
	ListApproved(ctx context.Context, req *dto.ApprovedFilterRequest) (*dto.ApprovedListResponse, error)
	ListVolunteers(ctx context.Context) ([]dto.VolunteerSummaryResponse, error)
	// DeleteVolunteer removes the account and, by cascade, its hours
	DeleteVolunteer(ctx context.Context, id int64) error
}

type adminService struct {
	repo   *repository.Repository
	creds  *credentialCache
	logger *zap.Logger
}

// NewAdminService creates an AdminService
func NewAdminService(repo *repository.Repository, creds *credentialCache, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, creds: creds, logger: logger}
}

func (s *adminService) ListPending(ctx context.Context) ([]dto.TimesheetResponse, error) {
	facts, _, err := s.repo.Timesheet.List(ctx, repository.TimesheetFilter{Status: model.StatusPending}, 0, 0)
	if err != nil {
		s.logger.Error("list pending timesheets failed", zap.Error(err))
		return nil, err
	}
	return toTimesheetResponses(facts), nil
}

func (s *adminService) ListApproved(ctx context.Context, req *dto.ApprovedFilterRequest) (*dto.ApprovedListResponse, error) {
	filter, err := approvedFilter(req)
	if err != nil {
		return nil, err
	}

	facts, total, err := s.repo.Timesheet.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list approved timesheets failed", zap.Error(err))
		return nil, err
	}

	sum, err := s.repo.Timesheet.SumHours(ctx, filter)
	if err != nil {
		s.logger.Error("sum approved hours failed", zap.Error(err))
		return nil, err
	}

	return &dto.ApprovedListResponse{
		List:       toTimesheetResponses(facts),
		Total:      total,
		TotalHours: roundHours(sum),
		Page:       req.GetPage(),
		PageSize:   req.GetPageSize(),
	}, nil
}

// approvedFilter turns the query into a repository filter restricted to Approved
func approvedFilter(req *dto.ApprovedFilterRequest) (repository.TimesheetFilter, error) {
	f := repository.TimesheetFilter{
		Status:        model.StatusApproved,
		VolunteerCode: req.VolunteerCode,
		ProjectName:   req.ProjectName,
	}
	if req.StartDate != "" {
		from, err := time.Parse(model.DateLayout, req.StartDate)
		if err != nil {
			return f, ErrInvalidDateRange
		}
		f.From = &from
	}
	if req.EndDate != "" {
		to, err := time.Parse(model.DateLayout, req.EndDate)
		if err != nil {
			return f, ErrInvalidDateRange
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, ErrInvalidDateRange
	}
	return f, nil
}

func (s *adminService) ListVolunteers(ctx context.Context) ([]dto.VolunteerSummaryResponse, error) {
	rows, err := s.repo.Volunteer.SummarizeApprovedHours(ctx)
	if err != nil {
		s.logger.Error("summarize volunteers failed", zap.Error(err))
		return nil, err
	}

	out := make([]dto.VolunteerSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.VolunteerSummaryResponse{
			ID:            r.VolunteerID,
			VolunteerCode: r.VolunteerCode,
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			Email:         r.Email,
			TotalHours:    roundHours(r.TotalHours),
			ProjectCount:  r.ProjectCount,
		})
	}
	return out, nil
}

func (s *adminService) DeleteVolunteer(ctx context.Context, id int64) error {
	v, err := s.repo.Volunteer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVolunteerNotFound
		}
		s.logger.Error("get volunteer failed", zap.Int64("volunteer_id", id), zap.Error(err))
		return err
	}

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.ResetToken.DeleteByEmail(ctx, v.Email); err != nil {
			return err
		}
		return tx.Volunteer.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVolunteerNotFound
		}
		s.logger.Error("delete volunteer failed", zap.Int64("volunteer_id", id), zap.Error(err))
		return err
	}

	s.creds.invalidate(ctx, jwt.RoleVolunteer, v.Username)
	s.logger.Info("volunteer deleted", zap.Int64("volunteer_id", id), zap.String("volunteer_code", v.Code()))
	return nil
}

func toTimesheetResponses(facts []model.Timesheet) []dto.TimesheetResponse {
	out := make([]dto.TimesheetResponse, 0, len(facts))
	for i := range facts {
		out = append(out, *toTimesheetResponse(&facts[i]))
	}
	return out
}
