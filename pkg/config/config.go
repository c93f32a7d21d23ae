// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Env is the deployment environment; "production" suppresses error
	// details in API responses.
	Env string

	// DataDir is the root for the database file, audio output, bundles and
	// rss feeds.
	DataDir string

	// Subject is the person whose speeches are collected. It drives the
	// C-SPAN title filter and the YouTube keyword queries.
	Subject string

	// OpenRouterAPIKey is the server-side fallback key for LLM calls.
	OpenRouterAPIKey string

	// OpenRouterTestKey, when set, is seeded into the key pool at startup.
	OpenRouterTestKey string

	// YouTubeAPIKey enables the YouTube source adapter.
	YouTubeAPIKey string

	// JWTSecret signs admin session tokens.
	JWTSecret string

	// DefaultAdminPassword bootstraps the admin account.
	DefaultAdminPassword string

	// TTSScript is the path to the TTS worker script, run via TTSPython.
	TTSScript string
	TTSPython string

	// EventRetention is how long analytics events are kept.
	EventRetention time.Duration
}

// Load reads configuration from the environment. envPath names a .env file
// to load first; a missing file is not an error.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Could not load .env file, continuing with existing environment",
				"path", envPath, "error", err)
		} else {
			slog.Info("Loaded environment", "path", envPath)
		}
	}

	retentionDays, err := strconv.Atoi(getEnvOrDefault("EVENT_RETENTION_DAYS", "30"))
	if err != nil || retentionDays <= 0 {
		return Config{}, fmt.Errorf("invalid EVENT_RETENTION_DAYS: %q", os.Getenv("EVENT_RETENTION_DAYS"))
	}

	return Config{
		Port:                 getEnvOrDefault("PORT", "3000"),
		Env:                  resolveEnv(),
		DataDir:              getEnvOrDefault("DATA_DIR", "./data"),
		Subject:              getEnvOrDefault("SUBJECT", "Donald Trump"),
		OpenRouterAPIKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterTestKey:    os.Getenv("OPENROUTER_TEST_KEY"),
		YouTubeAPIKey:        os.Getenv("YOUTUBE_API_KEY"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		DefaultAdminPassword: getEnvOrDefault("DEFAULT_ADMIN_PASSWORD", "admin"),
		TTSScript:            getEnvOrDefault("TTS_SCRIPT", "./scripts/tts.py"),
		TTSPython:            getEnvOrDefault("TTS_PYTHON", "python3"),
		EventRetention:       time.Duration(retentionDays) * 24 * time.Hour,
	}, nil
}

// IsProduction reports whether error details should be suppressed.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// resolveEnv reads APP_ENV, falling back to NODE_ENV for compatibility with
// older deployments.
func resolveEnv() string {
	if v := os.Getenv("APP_ENV"); v != "" {
		return v
	}
	return getEnvOrDefault("NODE_ENV", "development")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
