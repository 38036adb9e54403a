package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "")
	cfg := Load()

	if cfg.Port != "3000" || cfg.StorageBackend != "sqlite" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TickInterval != time.Minute {
		t.Fatalf("expected 1m tick, got %s", cfg.TickInterval)
	}
	if cfg.WeekdayMode != WeekdayReference {
		t.Fatalf("expected reference weekday mode, got %s", cfg.WeekdayMode)
	}
	if !cfg.UseMockLLM {
		t.Fatal("expected mock LLM without an API key")
	}
	if !cfg.EnableWorkers {
		t.Fatal("expected workers enabled by default")
	}
}

func TestLoadClampsTickInterval(t *testing.T) {
	t.Setenv("COACH_TICK_SECONDS", "300")
	if got := Load().TickInterval; got != time.Minute {
		t.Fatalf("expected tick clamped to 1m, got %s", got)
	}
	t.Setenv("COACH_TICK_SECONDS", "15")
	if got := Load().TickInterval; got != 15*time.Second {
		t.Fatalf("expected 15s tick, got %s", got)
	}
}

func TestLoadNormalizesOrigins(t *testing.T) {
	t.Setenv("COACH_ALLOWED_ORIGINS", " https://a.example , https://b.example")
	if got := Load().AllowedOrigins; got != "https://a.example,https://b.example" {
		t.Fatalf("unexpected origins %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.AppSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
	cfg.AppSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	cfg.WeekdayMode = "lunar"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown weekday mode to be rejected")
	}
}
