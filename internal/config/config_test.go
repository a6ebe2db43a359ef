package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.BatchRetention != 5*time.Minute {
		t.Errorf("batch retention = %v, want 5m", cfg.BatchRetention)
	}
	if cfg.S3 != nil {
		t.Error("S3 config set without S3_ENDPOINT")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Error("missing GEMINI_API_KEY accepted")
	}
}

func TestLoadS3RequiresCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY", "")
	t.Setenv("S3_SECRET_KEY", "")
	if _, err := Load(); err == nil {
		t.Error("S3 endpoint without credentials accepted")
	}
}

func TestLoadS3Config(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY", "ak")
	t.Setenv("S3_SECRET_KEY", "sk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.S3 == nil {
		t.Fatal("S3 config not populated")
	}
	if cfg.S3.Bucket != "roomcheck" {
		t.Errorf("bucket = %q, want default roomcheck", cfg.S3.Bucket)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	if got := getEnvDuration("TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Errorf("duration = %v, want 90s", got)
	}

	t.Setenv("TEST_DURATION", "45")
	if got := getEnvDuration("TEST_DURATION", time.Minute); got != 45*time.Second {
		t.Errorf("bare-seconds duration = %v, want 45s", got)
	}

	t.Setenv("TEST_DURATION", "nope")
	if got := getEnvDuration("TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("invalid duration = %v, want fallback", got)
	}
}
