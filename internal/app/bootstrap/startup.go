// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/app/report/render"
	"github.com/dalemusser/coachhub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/app/system/notify"
	"github.com/dalemusser/coachhub/internal/app/system/ratelimit"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/app/system/workers"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services are built once in Startup and used by BuildHandler and Shutdown.
type services struct {
	sessions     *auth.SessionManager
	generator    *report.Generator
	notifier     *notify.Notifier
	loginLimiter *ratelimit.LoginLimiter
	stateCleanup *workers.StateCleanup
}

var svc *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: timeouts,
// the report renderer probe, the session manager, the bootstrap admin and the
// background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n))
	}

	db := deps.CoachHubMongoDatabase

	renderer, err := render.Probe(render.ProbeConfig{
		Mode:       appCfg.ReportRenderer,
		ChromePath: appCfg.ChromePath,
		FontPath:   appCfg.ReportFontPath,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("report renderer probe failed", zap.Error(err))
		return err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return err
	}

	// Fresh user data on every request: role changes and deactivations take
	// effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, userstore.New(db), appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}

	cleanup := workers.NewStateCleanup(oauthstate.New(db), logger, appCfg.StateCleanupInterval)
	cleanup.Start()

	svc = &services{
		sessions: sessionMgr,
		generator: report.NewGenerator(report.Config{
			Source:   report.NewMongoSource(db),
			Renderer: renderer,
			Logger:   logger,
			Retry: report.RetryConfig{
				Attempts: appCfg.ReportRetryAttempts,
				Backoff:  appCfg.ReportRetryBackoff,
			},
		}),
		notifier:     notify.New(db, logger),
		loginLimiter: ratelimit.NewLoginLimiter(),
		stateCleanup: cleanup,
	}
	return nil
}

// ensureAdmin creates the bootstrap admin account when no user has email.
// An existing account is left untouched; one with another role is logged.
func ensureAdmin(ctx context.Context, users *userstore.Store, email, password string, logger *zap.Logger) error {
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			logger.Warn("bootstrap admin email belongs to a non-admin account; not promoting",
				zap.String("email", existing.Email),
				zap.String("role", existing.Role))
		}
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		logger.Error("bootstrap admin lookup failed", zap.Error(err))
		return err
	}

	u, err := users.Create(ctx, models.User{
		FullName: "Yönetici",
		Email:    email,
		Role:     models.RoleAdmin,
	}, password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// created concurrently by another instance
		return nil
	}
	if err != nil {
		logger.Error("bootstrap admin create failed", zap.Error(err))
		return err
	}
	logger.Info("bootstrap admin created", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	return nil
}
