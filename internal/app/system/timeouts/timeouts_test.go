package timeouts

import (
	"testing"
	"time"
)

func TestConfigureKeepsZeroFields(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, DefaultMedium)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer Reset()

	t.Setenv("COACHHUB_TIMEOUT_RENDER", "90s")
	t.Setenv("COACHHUB_TIMEOUT_PING", "not-a-duration")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv() = %d, want 1", n)
	}
	if got := Render(); got != 90*time.Second {
		t.Errorf("Render() = %v, want 90s", got)
	}
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping() = %v, want default", got)
	}
}
