package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Payload modes control what gets embedded in the QR image URL.
// Compact embeds the short record id (safe for scanner payload limits),
// legacy embeds the full ciphertext (matches already-printed codes).
const (
	PayloadModeCompact = "compact"
	PayloadModeLegacy  = "legacy"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// ProfileBaseURL is the human-facing profile page. The redirect endpoint
	// appends the national id as a ci query parameter.
	ProfileBaseURL string `env:"PROFILE_BASE_URL" default:"http://localhost:3000/profile"`
	PayloadMode   string `env:"PAYLOAD_MODE" default:"legacy"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" default:"10485760"` // 10 MiB

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":          cfg.DatabaseURL,
		"CLOUDINARY_CLOUD_NAME": cfg.CloudinaryCloudName,
		"CLOUDINARY_API_KEY":    cfg.CloudinaryAPIKey,
		"CLOUDINARY_API_SECRET": cfg.CloudinaryAPISecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.PayloadMode != PayloadModeCompact && cfg.PayloadMode != PayloadModeLegacy {
		return fmt.Errorf("PAYLOAD_MODE must be %q or %q, got %q", PayloadModeCompact, PayloadModeLegacy, cfg.PayloadMode)
	}

	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	return nil
}
