// Package timeouts provides centralized timeout values for handler operations.
//
// Handlers wrap their request context with one of these before touching
// MongoDB or rendering a report:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and multi-step writes
//   - Long: report data collection across several collections
//   - Render: PDF rendering (HTML conversion starts a browser)
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultRender = 45 * time.Second
)

var (
	mu     sync.RWMutex
	values = Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Render: DefaultRender,
	}
)

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Render time.Duration
}

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for single-document operations.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for list queries and moderate writes.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for report data collection.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Render returns the timeout for turning report data into a PDF.
func Render() time.Duration { return get(func(c Config) time.Duration { return c.Render }) }

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(values)
}

// Configure overrides timeout values. Zero fields are ignored.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&values.Ping, cfg.Ping)
	merge(&values.Short, cfg.Short)
	merge(&values.Medium, cfg.Medium)
	merge(&values.Long, cfg.Long)
	merge(&values.Render, cfg.Render)
}

func merge(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores all timeouts to their default values. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	values = Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Render: DefaultRender,
	}
}

// ConfigureFromEnv reads COACHHUB_TIMEOUT_{PING,SHORT,MEDIUM,LONG,RENDER}
// (Go duration strings). Invalid or missing values are skipped.
// Returns the number of timeouts configured.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for key, dst := range map[string]*time.Duration{
		"COACHHUB_TIMEOUT_PING":   &cfg.Ping,
		"COACHHUB_TIMEOUT_SHORT":  &cfg.Short,
		"COACHHUB_TIMEOUT_MEDIUM": &cfg.Medium,
		"COACHHUB_TIMEOUT_LONG":   &cfg.Long,
		"COACHHUB_TIMEOUT_RENDER": &cfg.Render,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns a copy of the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return values
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "report data")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
