package render

import (
	"errors"
	"testing"
)

func lookPathFor(found map[string]string) func(string) (string, error) {
	return func(file string) (string, error) {
		if p, ok := found[file]; ok {
			return p, nil
		}
		return "", errors.New("not found")
	}
}

func TestProbe(t *testing.T) {
	none := lookPathFor(nil)
	chromium := lookPathFor(map[string]string{"chromium": "/usr/bin/chromium"})

	tests := []struct {
		name     string
		cfg      ProbeConfig
		wantName string
		wantErr  bool
	}{
		{name: "draw", cfg: ProbeConfig{Mode: ModeDraw, LookPath: chromium}, wantName: NameDraw},
		{name: "auto without chrome", cfg: ProbeConfig{Mode: ModeAuto, LookPath: none}, wantName: NameDraw},
		{name: "empty mode is auto", cfg: ProbeConfig{LookPath: chromium}, wantName: "html+draw"},
		{name: "auto with chrome", cfg: ProbeConfig{Mode: ModeAuto, LookPath: chromium}, wantName: "html+draw"},
		{name: "html with chrome", cfg: ProbeConfig{Mode: ModeHTML, LookPath: chromium}, wantName: "html+draw"},
		{name: "html without chrome", cfg: ProbeConfig{Mode: ModeHTML, LookPath: none}, wantErr: true},
		{name: "unknown mode", cfg: ProbeConfig{Mode: "latex", LookPath: chromium}, wantErr: true},
	}
	for _, tt := range tests {
		r, err := Probe(tt.cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if r.Name() != tt.wantName {
			t.Errorf("%s: got %q, want %q", tt.name, r.Name(), tt.wantName)
		}
	}
}

func TestFindChrome(t *testing.T) {
	look := lookPathFor(map[string]string{
		"google-chrome": "/opt/google/chrome",
		"my-chrome":     "/usr/local/bin/my-chrome",
	})

	if p, ok := FindChrome("", look); !ok || p != "/opt/google/chrome" {
		t.Errorf("first candidate: got %q, %v", p, ok)
	}
	if p, ok := FindChrome("my-chrome", look); !ok || p != "/usr/local/bin/my-chrome" {
		t.Errorf("configured name: got %q, %v", p, ok)
	}
	if _, ok := FindChrome("/nonexistent/chrome", look); ok {
		t.Error("missing configured path should not fall back to candidates")
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []string{ModeAuto, ModeHTML, ModeDraw} {
		if !ValidMode(m) {
			t.Errorf("ValidMode(%q) = false", m)
		}
	}
	if ValidMode("pdf") {
		t.Error("ValidMode(pdf) = true")
	}
}
