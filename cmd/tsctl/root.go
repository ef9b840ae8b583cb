package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/database"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
	applogger "github.com/abygeorge8848/VolunteeringPortal/pkg/logger"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/mail"
)

// app lazily opened dependencies shared by the subcommands
type app struct {
	configPath string

	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tsctl",
		Short:         "Operator tooling for the volunteer timesheet portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.yaml")

	root.AddCommand(
		newMigrateCmd(a),
		newCreateAdminCmd(a),
		newPurgeResetTokensCmd(a),
		newExportApprovedCmd(a),
	)
	return root
}

func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	db, err := database.NewDB(&a.cfg.Database, a.cfg.Log.Level, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.db = db
	return db, nil
}

// services builds the service layer without redis; caches are bypassed
func (a *app) services() (*service.Service, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository(db)
	return service.NewService(
		a.cfg,
		repo,
		jwt.NewManager(&a.cfg.Auth),
		nil,
		mail.NewSender(&a.cfg.Mail, a.logger),
		a.logger,
	), nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}
