package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.MySQLDSN == "" {
		t.Error("expected default MySQL DSN")
	}
	if len(cfg.KafkaBrokers) == 0 {
		t.Error("expected default Kafka brokers")
	}
	if cfg.CacheTTL <= 0 {
		t.Errorf("expected positive cache TTL, got %v", cfg.CacheTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("CACHE_TTL_SECS", "120")

	cfg := Load()

	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Errorf("expected 2m TTL, got %v", cfg.CacheTTL)
	}
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	t.Setenv("CACHE_TTL_SECS", "not-a-number")

	cfg := Load()
	if cfg.CacheTTL != time.Minute {
		t.Errorf("expected fallback 60s TTL, got %v", cfg.CacheTTL)
	}
}
