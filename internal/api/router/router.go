package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/api/handler"
	"github.com/abygeorge8848/VolunteeringPortal/internal/api/middleware"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/redis"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker func(ctx context.Context) error

// Setup builds the gin engine. rdb may be nil; rate limiting and token
// revocation are then skipped. health may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, health HealthChecker, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist, limiter = rdb, rdb
	}
	loginLimit := middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// volunteer auth, public
		auth := v1.Group("/auth")
		{
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/password-reset", loginLimit, h.Auth.RequestPasswordReset(model.AccountVolunteer))
			auth.POST("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
		}

		// admin auth, public
		adminAuth := v1.Group("/admin/auth")
		{
			adminAuth.POST("/login", loginLimit, h.Auth.AdminLogin)
			adminAuth.POST("/password-reset", loginLimit, h.Auth.RequestPasswordReset(model.AccountAdmin))
			adminAuth.POST("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.GET("/projects", h.Project.ListProjects)

			// weekly grid
			timesheets := authorized.Group("/timesheets", middleware.RoleAuth(jwt.RoleVolunteer))
			{
				timesheets.GET("/weeks/current", h.Timesheet.CurrentWeek)
				timesheets.GET("/weeks/:week_start", h.Timesheet.GetWeek)
				timesheets.PUT("/weeks/:week_start", h.Timesheet.SaveWeek)
				timesheets.POST("/weeks/:week_start/submit", h.Timesheet.SubmitWeek)
			}

			// signed-in volunteer
			me := authorized.Group("/me", middleware.RoleAuth(jwt.RoleVolunteer))
			{
				me.GET("/stats", h.Volunteer.GetStats)
				me.GET("/profile", h.Volunteer.GetProfile)
				me.PUT("/profile", h.Volunteer.UpdateProfile)
				me.PUT("/documents/:kind", h.Volunteer.UploadDocument)
				me.GET("/documents/:kind", h.Volunteer.GetDocument)
				me.GET("/calendar.ics", h.Volunteer.Calendar)
			}

			admin := authorized.Group("/admin", middleware.RoleAuth(jwt.RoleAdmin))
			{
				admin.POST("/projects", h.Project.CreateProject)
				admin.DELETE("/projects/:id", h.Project.DeleteProject)

				admin.GET("/timesheets/pending", h.Admin.ListPending)
				admin.PUT("/timesheets/:id/approve", h.Admin.Approve)
				admin.POST("/timesheets/approve", h.Admin.ApproveBatch)
				admin.GET("/timesheets/approved", h.Admin.ListApproved)

				admin.GET("/volunteers", h.Admin.ListVolunteers)
				admin.DELETE("/volunteers/:id", h.Admin.DeleteVolunteer)

				admin.GET("/export/approved.csv", h.Export.ApprovedCSV)
				admin.GET("/export/approved.xlsx", h.Export.ApprovedXLSX)

				admin.POST("/admins", h.Auth.CreateAdmin)
			}
		}
	}

	return r
}
