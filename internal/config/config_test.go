package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sources.Government.PollInterval != 2*time.Minute {
		t.Errorf("expected 2m government interval, got %v", cfg.Sources.Government.PollInterval)
	}
	if cfg.Sources.Social.PollInterval != 5*time.Minute {
		t.Errorf("expected 5m social interval, got %v", cfg.Sources.Social.PollInterval)
	}
	if cfg.Sources.Prober.PollInterval != time.Minute {
		t.Errorf("expected 1m prober interval, got %v", cfg.Sources.Prober.PollInterval)
	}
	if cfg.DB.Path != "" {
		t.Errorf("expected in-memory store by default, got %q", cfg.DB.Path)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected kafka disabled by default, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Seed.SampleData {
		t.Error("expected seeding disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WEATHER_CITIES", "Pune, Jaipur")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("GOVERNMENT_POLL_INTERVAL", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Sources.Weather.Cities) != 2 || cfg.Sources.Weather.Cities[0] != "Pune" {
		t.Errorf("city list not parsed: %v", cfg.Sources.Weather.Cities)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("broker list not parsed: %v", cfg.Kafka.Brokers)
	}
	if cfg.Sources.Government.PollInterval != 10*time.Minute {
		t.Errorf("expected 10m interval, got %v", cfg.Sources.Government.PollInterval)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "99999")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestLoad_PollIntervalTooShort(t *testing.T) {
	t.Setenv("SOCIAL_POLL_INTERVAL", "5s")

	if _, err := Load(); err == nil {
		t.Error("expected error for sub-30s poll interval")
	}
}
