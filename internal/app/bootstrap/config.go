// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/coachhub/internal/app/report/render"
	freeslotstore "github.com/dalemusser/coachhub/internal/app/store/freeslots"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CoachHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COACHHUB_MONGO_URI, COACHHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "coachhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "coachhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Base URL for OAuth callbacks and share links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of the service"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Report pipeline
	{Name: "report_renderer", Default: "auto", Desc: "PDF renderer: 'auto', 'html' (headless Chrome) or 'draw'"},
	{Name: "chrome_path", Default: "", Desc: "Chrome/Chromium binary for the html renderer (blank searches PATH)"},
	{Name: "report_font_path", Default: "", Desc: "TTF font with Turkish glyphs for the draw renderer"},
	{Name: "report_retry_attempts", Default: 3, Desc: "Attempts for student/teacher lookups when building a report"},
	{Name: "report_retry_backoff", Default: "200ms", Desc: "Base backoff between report lookup attempts"},

	// Billing
	{Name: "free_teacher_slots", Default: freeslotstore.DefaultCap, Desc: "Number of free teacher accounts"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap admin (created on startup)"},
	{Name: "admin_password", Default: "", Desc: "Password of the bootstrap admin"},

	// Background work
	{Name: "state_cleanup_interval", Default: "5m", Desc: "How often expired OAuth state tokens are removed"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COACHHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COACHHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		ReportRenderer:      appValues.String("report_renderer"),
		ChromePath:          appValues.String("chrome_path"),
		ReportFontPath:      appValues.String("report_font_path"),
		ReportRetryAttempts: appValues.Int("report_retry_attempts"),
		ReportRetryBackoff:  appValues.Duration("report_retry_backoff", 200*time.Millisecond),

		FreeTeacherSlots: appValues.Int("free_teacher_slots"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		StateCleanupInterval: appValues.Duration("state_cleanup_interval", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// CoachHub validates the MongoDB URI format and the renderer mode to catch
// configuration errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if !render.ValidMode(appCfg.ReportRenderer) {
		return fmt.Errorf("report_renderer must be %q, %q or %q, got %q",
			render.ModeAuto, render.ModeHTML, render.ModeDraw, appCfg.ReportRenderer)
	}

	if appCfg.FreeTeacherSlots < 0 {
		return fmt.Errorf("free_teacher_slots must not be negative")
	}

	if (appCfg.AdminEmail == "") != (appCfg.AdminPassword == "") {
		return fmt.Errorf("admin_email and admin_password must be set together")
	}

	if coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}

	return nil
}
