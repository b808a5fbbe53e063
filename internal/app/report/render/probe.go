package render

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/dalemusser/coachhub/internal/app/report"
	"go.uber.org/zap"
)

// Renderer modes accepted in configuration.
const (
	ModeAuto = "auto"
	ModeHTML = "html"
	ModeDraw = "draw"
)

// ValidMode reports whether m is a known renderer mode.
func ValidMode(m string) bool {
	switch m {
	case ModeAuto, ModeHTML, ModeDraw:
		return true
	}
	return false
}

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// ProbeConfig selects a renderer.
type ProbeConfig struct {
	Mode       string
	ChromePath string
	FontPath   string
	Logger     *zap.Logger
	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// FindChrome returns the Chrome binary to use: configured when it exists,
// otherwise the first candidate on PATH.
func FindChrome(configured string, lookPath func(string) (string, error)) (string, bool) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if configured != "" {
		if st, err := os.Stat(configured); err == nil && !st.IsDir() {
			return configured, true
		}
		if p, err := lookPath(configured); err == nil {
			return p, true
		}
		return "", false
	}
	for _, c := range chromeCandidates {
		if p, err := lookPath(c); err == nil {
			return p, true
		}
	}
	return "", false
}

// Probe picks the renderer for cfg.Mode. "draw" always uses DrawRenderer.
// "html" requires Chrome and falls back to drawing per report. "auto" behaves
// like "html" when Chrome is found and like "draw" otherwise.
func Probe(cfg ProbeConfig) (report.Renderer, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeAuto
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown report renderer mode %q", mode)
	}

	draw := NewDraw(DrawOptions{FontPath: cfg.FontPath})
	if mode == ModeDraw {
		log.Info("report renderer selected", zap.String("renderer", draw.Name()), zap.String("mode", mode))
		return draw, nil
	}

	chrome, ok := FindChrome(cfg.ChromePath, cfg.LookPath)
	if !ok {
		if mode == ModeHTML {
			return nil, fmt.Errorf("report renderer %q needs Chrome but none was found", mode)
		}
		log.Info("report renderer selected",
			zap.String("renderer", draw.Name()),
			zap.String("mode", mode),
			zap.String("reason", "chrome not found"))
		return draw, nil
	}

	r := WithFallback(NewHTML(chrome, log), draw, log)
	log.Info("report renderer selected",
		zap.String("renderer", r.Name()),
		zap.String("mode", mode),
		zap.String("chrome", chrome))
	return r, nil
}
