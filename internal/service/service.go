package service

import (
	"go.uber.org/zap"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/mail"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/redis"
)

// Service aggregate of every service
type Service struct {
	Auth      AuthService
	Reset     PasswordResetService
	Volunteer VolunteerService
	Timesheet TimesheetService
	Stats     StatsService
	Project   ProjectService
	Approval  ApprovalService
	Admin     AdminService
	Export    ExportService
}

// NewService wires every service. rdb may be nil, which disables caching and
// token revocation.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mailer mail.Sender,
	logger *zap.Logger,
) *Service {
	store := newCacheStore(rdb)
	creds := newCredentialCache(store, cfg.Redis.CacheTTL, logger)
	projects := newProjectCache(store, cfg.Redis.CacheTTL, logger)

	var blacklist tokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, blacklist, creds, logger),
		Reset:     NewPasswordResetService(&cfg.Reset, repo, mailer, creds, logger),
		Volunteer: NewVolunteerService(repo, creds, logger),
		Timesheet: NewTimesheetService(repo, projects, cfg.Timesheet.GridSlots, logger),
		Stats:     NewStatsService(repo, logger),
		Project:   NewProjectService(repo, projects, logger),
		Approval:  NewApprovalService(repo, logger),
		Admin:     NewAdminService(repo, creds, logger),
		Export:    NewExportService(repo, logger),
	}
}
