package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/coachhub/internal/app/report"
	"go.uber.org/zap"
)

type fallback struct {
	primary   report.Renderer
	secondary report.Renderer
	log       *zap.Logger
}

// WithFallback returns a renderer that tries primary first and renders with
// secondary when primary fails. It only fails when both do.
func WithFallback(primary, secondary report.Renderer, logger *zap.Logger) report.Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallback{primary: primary, secondary: secondary, log: logger}
}

func (f *fallback) Name() string { return f.primary.Name() + "+" + f.secondary.Name() }

func (f *fallback) Render(ctx context.Context, d *report.Data) ([]byte, error) {
	out, err := f.primary.Render(ctx, d)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	f.log.Warn("primary report renderer failed, falling back",
		zap.String("primary", f.primary.Name()),
		zap.String("fallback", f.secondary.Name()),
		zap.Error(err))

	out, err2 := f.secondary.Render(ctx, d)
	if err2 != nil {
		return nil, fmt.Errorf("render report: %w", errors.Join(err, err2))
	}
	return out, nil
}
