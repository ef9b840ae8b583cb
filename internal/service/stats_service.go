package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
)

// ErrVolunteerNotFound no volunteer with that id
var ErrVolunteerNotFound = errors.New("volunteer not found")

const (
	// trendPoints how many daily and weekly buckets the dashboard shows
	trendPoints = 30
	// noProject shown when a volunteer has no approved hours
	noProject = "N/A"
)

// StatsService volunteer dashboard statistics over approved hours
type StatsService interface {
	VolunteerStats(ctx context.Context, volunteerID int64) (*dto.VolunteerStatsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService creates a StatsService
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

func (s *statsService) VolunteerStats(ctx context.Context, volunteerID int64) (*dto.VolunteerStatsResponse, error) {
	volunteer, err := s.repo.Volunteer.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		s.logger.Error("get volunteer failed", zap.Int64("volunteer_id", volunteerID), zap.Error(err))
		return nil, err
	}

	facts, err := s.repo.Timesheet.ListByVolunteerStatus(ctx, volunteerID, model.StatusApproved)
	if err != nil {
		s.logger.Error("list approved hours failed", zap.Int64("volunteer_id", volunteerID), zap.Error(err))
		return nil, err
	}

	stats := Aggregate(facts)
	stats.VolunteerCode = volunteer.Code()
	return stats, nil
}

// ════════════════════════════════════════════════════════════
// Aggregate: approved hours statistics
// ════════════════════════════════════════════════════════════
//
// Callers pass approved facts only. Weeks active is the whole number of weeks
// between the first and last fact, never less than 1. Ties for most active
// project go to the alphabetically first name.

func Aggregate(facts []model.Timesheet) *dto.VolunteerStatsResponse {
	out := &dto.VolunteerStatsResponse{
		MostActiveProject: noProject,
		WeeksActive:       1,
		Daily:             []dto.DateHours{},
		Weekly:            []dto.DateHours{},
		Projects:          []dto.ProjectHours{},
	}
	if len(facts) == 0 {
		return out
	}

	daily := make(map[time.Time]float64)
	weekly := make(map[time.Time]float64)
	byProject := make(map[string]float64)
	var total float64
	minDate, maxDate := model.Day(facts[0].Date), model.Day(facts[0].Date)

	for i := range facts {
		f := &facts[i]
		d := model.Day(f.Date)
		total += f.Hours
		daily[d] += f.Hours
		weekly[WeekAnchor(d)] += f.Hours
		byProject[f.ProjectName()] += f.Hours
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	out.TotalHours = roundHours(total)
	out.WeeksActive = WeeksActive(minDate, maxDate)
	out.AvgWeeklyHours = roundHours(total / float64(out.WeeksActive))
	out.ProjectsInvolved = len(byProject)
	out.Daily = lastBuckets(daily, trendPoints)
	out.Weekly = lastBuckets(weekly, trendPoints)

	for name, h := range byProject {
		out.Projects = append(out.Projects, dto.ProjectHours{Project: name, Hours: roundHours(h)})
	}
	sort.Slice(out.Projects, func(i, j int) bool {
		if out.Projects[i].Hours != out.Projects[j].Hours {
			return out.Projects[i].Hours > out.Projects[j].Hours
		}
		return out.Projects[i].Project < out.Projects[j].Project
	})
	out.MostActiveProject = out.Projects[0].Project

	return out
}

// WeeksActive floor((last-first)/7 days), at least 1
func WeeksActive(first, last time.Time) int {
	days := int(model.Day(last).Sub(model.Day(first)).Hours() / 24)
	weeks := days / 7
	if weeks < 1 {
		return 1
	}
	return weeks
}

// lastBuckets the latest n buckets in ascending date order
func lastBuckets(m map[time.Time]float64, n int) []dto.DateHours {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if len(dates) > n {
		dates = dates[len(dates)-n:]
	}

	out := make([]dto.DateHours, 0, len(dates))
	for _, d := range dates {
		out = append(out, dto.DateHours{Date: d.Format(model.DateLayout), Hours: roundHours(m[d])})
	}
	return out
}
