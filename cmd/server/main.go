package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/api/handler"
	"github.com/abygeorge8848/VolunteeringPortal/internal/api/router"
	"github.com/abygeorge8848/VolunteeringPortal/internal/jobs"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/database"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
	applogger "github.com/abygeorge8848/VolunteeringPortal/pkg/logger"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/mail"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting volunteer portal",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	// 3.1 migrations
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. redis, optional: without it caching, rate limiting and token
	// revocation are off
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without cache and token blacklist", zap.Error(err))
		rdb = nil
	}

	// 5. jwt + mail
	jwtMgr := jwt.NewManager(&cfg.Auth)
	mailer := mail.NewSender(&cfg.Mail, logger)

	// 6. repository → service → handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, mailer, logger)
	h := handler.NewHandler(svc, &handler.CookieOptions{
		Secure: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
		MaxAge: cfg.Auth.RefreshTokenTTLRemember,
	})

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.EnsureBootstrapAdmin(bootCtx); err != nil {
		logger.Error("bootstrap admin not created", zap.Error(err))
	}
	bootCancel()

	// 7. background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.NewScheduler(&cfg.Jobs, svc.Reset, logger)
		if err != nil {
			logger.Fatal("job scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	// 8. router
	engine := router.Setup(cfg, h, jwtMgr, rdb, repo.Ping, logger)

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
