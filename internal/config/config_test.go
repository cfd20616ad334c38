package config

import (
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/turnero")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.HTTPAddr != ":9020" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SessionDriver != "memory" || cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("session: driver=%q ttl=%v", cfg.SessionDriver, cfg.SessionTTL)
	}
	if cfg.ClassifierTimeout != 3*time.Second {
		t.Fatalf("ClassifierTimeout = %v", cfg.ClassifierTimeout)
	}
	if cfg.MQTTTopicPrefix != "turnero" {
		t.Fatalf("MQTTTopicPrefix = %q", cfg.MQTTTopicPrefix)
	}
}

func TestLoadServerConfigOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/turnero")
	t.Setenv("TURNERO_HTTP_ADDR", ":8080")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("SESSION_TTL_HOURS", "6")
	t.Setenv("CLASSIFIER_BASE_URL", "http://llm:8000/")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.SessionDriver != "redis" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.SessionTTL != 6*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.ClassifierBaseURL != "http://llm:8000" {
		t.Fatalf("ClassifierBaseURL = %q", cfg.ClassifierBaseURL)
	}
}

func TestLoadServerConfigValidation(t *testing.T) {
	t.Setenv("DB_DSN", "")
	if _, err := LoadServerConfig(); err == nil {
		t.Fatalf("missing DB_DSN accepted")
	}

	t.Setenv("DB_DSN", "postgres://localhost/turnero")
	t.Setenv("SESSION_DRIVER", "cassandra")
	if _, err := LoadServerConfig(); err == nil {
		t.Fatalf("unknown session driver accepted")
	}
}
