package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
)

// ErrTimesheetNotFound no fact with that id
var ErrTimesheetNotFound = errors.New("timesheet entry not found")

// ApprovalService admin approval of submitted hours.
// Approval only moves a fact forward to Approved; nothing moves it back.
type ApprovalService interface {
	Approve(ctx context.Context, adminID, timesheetID int64) (*dto.TimesheetResponse, error)
	ApproveBatch(ctx context.Context, adminID int64, ids []int64) (*dto.ApproveBatchResponse, error)
}

type approvalService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewApprovalService creates an ApprovalService
func NewApprovalService(repo *repository.Repository, logger *zap.Logger) ApprovalService {
	return &approvalService{repo: repo, now: time.Now, logger: logger}
}

func (s *approvalService) Approve(ctx context.Context, adminID, timesheetID int64) (*dto.TimesheetResponse, error) {
	fact, err := s.repo.Timesheet.GetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		s.logger.Error("get timesheet failed", zap.Int64("timesheet_id", timesheetID), zap.Error(err))
		return nil, err
	}

	if fact.IsApproved() {
		return toTimesheetResponse(fact), nil
	}

	at := s.now().UTC()
	if _, err := s.repo.Timesheet.Approve(ctx, []int64{timesheetID}, adminID, at); err != nil {
		s.logger.Error("approve timesheet failed", zap.Int64("timesheet_id", timesheetID), zap.Error(err))
		return nil, err
	}

	fact.Status = model.StatusApproved
	fact.ApprovedAt = &at
	fact.ApprovedBy = &adminID

	s.logger.Info("timesheet approved",
		zap.Int64("timesheet_id", timesheetID),
		zap.Int64("admin_id", adminID))

	return toTimesheetResponse(fact), nil
}

// ApproveBatch approves every id or none: an unknown id rolls the batch back
func (s *approvalService) ApproveBatch(ctx context.Context, adminID int64, ids []int64) (*dto.ApproveBatchResponse, error) {
	result := &dto.ApproveBatchResponse{}
	at := s.now().UTC()

	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		pending := make([]int64, 0, len(ids))
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true

			fact, err := tx.Timesheet.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: id %d", ErrTimesheetNotFound, id)
				}
				return err
			}
			if fact.IsApproved() {
				result.AlreadyApproved++
				continue
			}
			pending = append(pending, id)
		}

		n, err := tx.Timesheet.Approve(ctx, pending, adminID, at)
		if err != nil {
			return err
		}
		result.Approved = n
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrTimesheetNotFound) {
			s.logger.Error("batch approve failed", zap.Int64s("ids", ids), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("timesheets approved",
		zap.Int64("admin_id", adminID),
		zap.Int64("approved", result.Approved),
		zap.Int("already_approved", result.AlreadyApproved))

	return result, nil
}

// ── conversions ──

func toTimesheetResponse(t *model.Timesheet) *dto.TimesheetResponse {
	resp := &dto.TimesheetResponse{
		ID:          t.ID,
		VolunteerID: t.VolunteerID,
		ProjectID:   t.ProjectID,
		ProjectName: t.ProjectName(),
		Date:        t.Date.Format(model.DateLayout),
		Hours:       t.Hours,
		Status:      t.Status,
		SubmittedAt: t.SubmittedAt.Format(time.RFC3339),
	}
	if t.ApprovedAt != nil {
		resp.ApprovedAt = t.ApprovedAt.Format(time.RFC3339)
	}
	if t.Volunteer != nil {
		resp.VolunteerCode = t.Volunteer.Code()
		resp.FirstName = t.Volunteer.FirstName
		resp.LastName = t.Volunteer.LastName
	}
	return resp
}
