package config_test

import (
	"testing"

	"arvyax/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFromYAMLOverrides(t *testing.T) {
	doc := []byte(`
server:
  listen: 0.0.0.0:9000
dashboard:
  upcoming_window_days: 7
redis:
  addr: localhost:6379
  ttl_seconds: 120
`)
	cfg, err := config.FromYAML(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" {
		t.Errorf("listen = %s", cfg.Server.Listen)
	}
	if cfg.Server.BasePath != "/v1" {
		t.Errorf("base path default lost: %s", cfg.Server.BasePath)
	}
	if cfg.Dashboard.UpcomingWindowDays != 7 {
		t.Errorf("window = %d", cfg.Dashboard.UpcomingWindowDays)
	}
	if cfg.Dashboard.AnalyticsDays != 30 {
		t.Errorf("analytics default lost: %d", cfg.Dashboard.AnalyticsDays)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.Server.BasePath = "v1"
	if err := cfg.Validate(); err == nil {
		t.Error("base path without leading slash accepted")
	}

	cfg = config.Default()
	cfg.Dashboard.AnalyticsDays = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero analytics days accepted")
	}

	cfg = config.Default()
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTLSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("redis without ttl accepted")
	}
}
