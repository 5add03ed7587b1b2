package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Storage.Dir != "data" {
		t.Fatalf("data dir = %q, want data", cfg.Storage.Dir)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("kafka brokers = %v, want none by default", cfg.Kafka.Brokers)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis addr = %q, want empty by default", cfg.Redis.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATA_DIR", "/tmp/sched")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.Storage.Dir != "/tmp/sched" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "broker2:9092" {
		t.Fatalf("kafka brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadWithDefaultsFallsBack(t *testing.T) {
	// t.Setenv registers the restore; the variable must be genuinely absent,
	// not set to the empty string, for the fallback to apply.
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg := LoadWithDefaults()
	if cfg.Auth.JWTSecret == "" {
		t.Fatal("expected a development fallback secret")
	}
}

func TestStringMasksSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret-value")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Contains(cfg.String(), "super-secret-value") {
		t.Fatalf("secret leaked in %q", cfg.String())
	}
}
