// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything specific to CoachHub. The struct is passed
// to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: coachhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Base URL used for OAuth callbacks and share links
	BaseURL string // e.g., "https://coachhub.com.tr" or "http://localhost:3000"

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Report pipeline
	ReportRenderer      string        // auto | html | draw
	ChromePath          string        // explicit Chrome/Chromium binary for the html renderer
	ReportFontPath      string        // TTF with Turkish glyphs for the draw renderer
	ReportRetryAttempts int           // identity lookup attempts
	ReportRetryBackoff  time.Duration // base backoff between identity attempts

	// Billing
	FreeTeacherSlots int // first-come-first-served free teacher accounts

	// Bootstrap admin (created on startup when both are set)
	AdminEmail    string
	AdminPassword string

	// How often expired OAuth state tokens are purged
	StateCleanupInterval time.Duration
}
