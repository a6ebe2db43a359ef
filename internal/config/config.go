package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/roomcheck/roomcheck/internal/store"
)

// Config is constructed once at startup and passed by reference to the
// components that need it. There is no package-level mutable state.
type Config struct {
	Port    string
	BaseURL string

	GeminiAPIKey string
	Model        string

	DataDir                string
	TmpDir                 string
	ManualObservationsFile string

	BatchRetention      time.Duration
	MaintenanceSchedule string

	// S3 is nil when the service runs on the local-disk store.
	S3 *store.S3Config
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		BaseURL:                getEnv("BASE_URL", "http://localhost:8080"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		Model:                  getEnv("AI_MODEL", "gemini-1.5-pro"),
		DataDir:                getEnv("DATA_DIR", "data"),
		TmpDir:                 getEnv("TMP_DIR", os.TempDir()),
		ManualObservationsFile: getEnv("MANUAL_OBSERVATIONS_FILE", "manual-observations.yaml"),
		BatchRetention:         getEnvDuration("BATCH_RETENTION", 5*time.Minute),
		MaintenanceSchedule:    getEnv("MAINTENANCE_SCHEDULE", "@every 1h"),
	}

	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3 = &store.S3Config{
			Endpoint:       endpoint,
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			Bucket:         getEnv("S3_BUCKET", "roomcheck"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getEnv("S3_REGION", "eu-central-1"),
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.S3 != nil && (c.S3.AccessKey == "" || c.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENDPOINT is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
