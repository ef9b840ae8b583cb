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

// ── timesheet errors ──

var (
	ErrInvalidWeekStart    = errors.New("invalid week start date")
	ErrInvalidGrid         = errors.New("each grid row needs exactly 7 hour values")
	ErrHoursOutOfRange     = errors.New("hours per day must not exceed 24")
	ErrInvalidTargetStatus = errors.New("timesheets can only be saved or submitted")
)

// TimesheetService week grid load and save
type TimesheetService interface {
	// LoadWeek returns the grid for the week containing anchor
	LoadWeek(ctx context.Context, volunteerID int64, anchor time.Time) (*dto.WeekGridResponse, error)
	// SaveWeek reconciles the grid into facts with status Saved or Pending
	SaveWeek(ctx context.Context, volunteerID int64, anchor time.Time, req *dto.SaveWeekRequest, status string) (*dto.SaveWeekResponse, error)
}

type timesheetService struct {
	repo      *repository.Repository
	projects  *projectCache
	gridSlots int
	now       func() time.Time
	logger    *zap.Logger
}

// NewTimesheetService creates a TimesheetService
func NewTimesheetService(repo *repository.Repository, projects *projectCache, gridSlots int, logger *zap.Logger) TimesheetService {
	if gridSlots <= 0 {
		gridSlots = DefaultGridSlots
	}
	return &timesheetService{
		repo:      repo,
		projects:  projects,
		gridSlots: gridSlots,
		now:       time.Now,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// LoadWeek
// ════════════════════════════════════════════════════════════

func (s *timesheetService) LoadWeek(ctx context.Context, volunteerID int64, anchor time.Time) (*dto.WeekGridResponse, error) {
	anchor = WeekAnchor(anchor)
	end := anchor.AddDate(0, 0, DaysPerWeek-1)

	facts, err := s.repo.Timesheet.ListByVolunteerRange(ctx, volunteerID, anchor, end)
	if err != nil {
		s.logger.Error("load week facts failed",
			zap.Int64("volunteer_id", volunteerID),
			zap.Time("week_start", anchor),
			zap.Error(err))
		return nil, err
	}

	grid := PivotWeek(anchor, facts, s.gridSlots)
	return toWeekGridResponse(grid), nil
}

// ════════════════════════════════════════════════════════════
// SaveWeek: grid to facts reconciler
// ════════════════════════════════════════════════════════════
//
// One transaction per call. For every non-empty cell the project is resolved
// (created when missing) and the (volunteer, project, date) fact is updated or
// inserted. Approved facts are never modified. Any write error rolls back the
// whole save.

func (s *timesheetService) SaveWeek(
	ctx context.Context,
	volunteerID int64,
	anchor time.Time,
	req *dto.SaveWeekRequest,
	status string,
) (*dto.SaveWeekResponse, error) {
	if status != model.StatusSaved && status != model.StatusPending {
		return nil, ErrInvalidTargetStatus
	}

	// 1. grid from request
	grid, err := gridFromRequest(WeekAnchor(anchor), req)
	if err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	result := &dto.SaveWeekResponse{
		WeekStart: grid.Anchor.Format(model.DateLayout),
		Status:    status,
	}

	// 2. wide → long
	cells := grid.Flatten()
	if len(cells) == 0 {
		return result, nil
	}

	// 3. upsert every cell in one transaction
	submittedAt := s.now().UTC()
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		resolved := make(map[string]*model.Project)

		for _, cell := range cells {
			project, ok := resolved[cell.Project]
			if !ok {
				p, created, err := tx.Project.FirstOrCreateByName(ctx, cell.Project, nil)
				if err != nil {
					return fmt.Errorf("resolve project %q: %w", cell.Project, err)
				}
				if created {
					result.CreatedProjects = append(result.CreatedProjects, p.Name)
				}
				resolved[cell.Project] = p
				project = p
			}

			existing, err := tx.Timesheet.GetByKey(ctx, volunteerID, project.ID, cell.Date)
			switch {
			case err == nil:
				if existing.IsApproved() {
					result.Locked++
					continue
				}
				if err := tx.Timesheet.UpdateEntry(ctx, existing.ID, cell.Hours, status, submittedAt); err != nil {
					return fmt.Errorf("update timesheet %d: %w", existing.ID, err)
				}
				result.Updated++

			case errors.Is(err, gorm.ErrRecordNotFound):
				fact := &model.Timesheet{
					VolunteerID: volunteerID,
					ProjectID:   project.ID,
					Date:        cell.Date,
					Hours:       cell.Hours,
					Status:      status,
					SubmittedAt: submittedAt,
				}
				if err := tx.Timesheet.Create(ctx, fact); err != nil {
					return fmt.Errorf("insert timesheet %s %s: %w", cell.Project, cell.Date.Format(model.DateLayout), err)
				}
				result.Inserted++

			default:
				return fmt.Errorf("lookup timesheet: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("save week failed, rolled back",
			zap.Int64("volunteer_id", volunteerID),
			zap.String("week_start", result.WeekStart),
			zap.String("status", status),
			zap.Error(err))
		return nil, err
	}

	// 4. new projects change the shared project list
	if len(result.CreatedProjects) > 0 {
		s.projects.invalidate(ctx)
	}

	s.logger.Info("week saved",
		zap.Int64("volunteer_id", volunteerID),
		zap.String("week_start", result.WeekStart),
		zap.String("status", status),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("locked", result.Locked))

	return result, nil
}

// ── conversions ──

func gridFromRequest(anchor time.Time, req *dto.SaveWeekRequest) (WeekGrid, error) {
	grid := WeekGrid{Anchor: anchor}
	if req == nil {
		return grid, nil
	}
	grid.Slots = make([]GridSlot, 0, len(req.Rows))
	for _, row := range req.Rows {
		if len(row.Hours) != DaysPerWeek {
			return WeekGrid{}, ErrInvalidGrid
		}
		slot := GridSlot{Project: row.Project}
		copy(slot.Hours[:], row.Hours)
		grid.Slots = append(grid.Slots, slot)
	}
	return grid, nil
}

func toWeekGridResponse(grid WeekGrid) *dto.WeekGridResponse {
	dates := WeekDates(grid.Anchor)
	resp := &dto.WeekGridResponse{
		WeekStart: grid.Anchor.Format(model.DateLayout),
		WeekEnd:   dates[DaysPerWeek-1].Format(model.DateLayout),
		PrevWeek:  grid.Anchor.AddDate(0, 0, -DaysPerWeek).Format(model.DateLayout),
		NextWeek:  grid.Anchor.AddDate(0, 0, DaysPerWeek).Format(model.DateLayout),
		Days:      make([]dto.GridDayResponse, 0, DaysPerWeek),
		Rows:      make([]dto.GridRowResponse, 0, len(grid.Slots)),
	}

	for _, d := range dates {
		resp.Days = append(resp.Days, dto.GridDayResponse{
			Date:    d.Format(model.DateLayout),
			Weekday: d.Weekday().String(),
			Label:   d.Format("Monday 01/02"),
		})
	}

	for _, slot := range grid.Slots {
		row := dto.GridRowResponse{
			Project:  slot.Project,
			Hours:    make([]float64, DaysPerWeek),
			Statuses: make([]string, DaysPerWeek),
		}
		copy(row.Hours, slot.Hours[:])
		copy(row.Statuses, slot.Statuses[:])
		resp.Rows = append(resp.Rows, row)
	}

	totals := grid.DailyTotals()
	resp.DailyTotals = totals[:]
	for _, h := range totals {
		resp.WeekTotal += h
	}
	resp.WeekTotal = roundHours(resp.WeekTotal)

	return resp
}
