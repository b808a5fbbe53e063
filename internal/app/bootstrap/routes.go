// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	adminfeature "github.com/dalemusser/coachhub/internal/app/features/admin"
	authgooglefeature "github.com/dalemusser/coachhub/internal/app/features/authgoogle"
	healthfeature "github.com/dalemusser/coachhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/coachhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/coachhub/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/coachhub/internal/app/features/notifications"
	parentfeature "github.com/dalemusser/coachhub/internal/app/features/parent"
	reportsfeature "github.com/dalemusser/coachhub/internal/app/features/reports"
	studentfeature "github.com/dalemusser/coachhub/internal/app/features/student"
	teacherfeature "github.com/dalemusser/coachhub/internal/app/features/teacher"
	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for CoachHub.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. Everything under /api speaks JSON; the session
// middleware runs globally so any handler can read the current user.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}
	db := deps.CoachHubMongoDatabase
	sm := svc.sessions

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(sm.LoadSessionUser)

	// Operational endpoints
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.CoachHubMongoClient, svc.generator.RendererName(), logger)))
	r.Handle("/metrics", metrics.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sm, svc.loginLimiter, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler, sm))

	logoutHandler := logoutfeature.NewHandler(sm, logger)
	r.Mount("/api/auth/logout", logoutfeature.Routes(logoutHandler))

	if appCfg.GoogleClientID != "" {
		googleHandler := authgooglefeature.NewHandler(db, sm, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Role areas
	teacherHandler := teacherfeature.NewHandler(db, svc.notifier, logger)
	r.Mount("/api/teacher", teacherfeature.Routes(teacherHandler, sm))

	studentHandler := studentfeature.NewHandler(db, logger)
	r.Mount("/api/student", studentfeature.Routes(studentHandler, sm))

	parentHandler := parentfeature.NewHandler(db, svc.generator, logger)
	r.Mount("/api/parent", parentfeature.Routes(parentHandler, sm))

	adminHandler := adminfeature.NewHandler(db, appCfg.FreeTeacherSlots, logger)
	r.Mount("/api/admin", adminfeature.Routes(adminHandler, sm))

	// Reports
	reportsHandler := reportsfeature.NewHandler(db, svc.generator, svc.notifier, logger)
	r.Mount("/api/reports", reportsfeature.Routes(reportsHandler, sm))
	r.Mount("/api/public/reports", reportsfeature.PublicRoutes(reportsHandler))

	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler, sm))

	return r, nil
}
