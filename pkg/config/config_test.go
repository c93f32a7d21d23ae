package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_ENV", "NODE_ENV", "DATA_DIR", "SUBJECT",
		"OPENROUTER_API_KEY", "OPENROUTER_TEST_KEY", "YOUTUBE_API_KEY",
		"JWT_SECRET", "DEFAULT_ADMIN_PASSWORD",
		"TTS_SCRIPT", "TTS_PYTHON", "EVENT_RETENTION_DAYS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "Donald Trump", cfg.Subject)
	assert.Equal(t, "python3", cfg.TTSPython)
	assert.Equal(t, "./scripts/tts.py", cfg.TTSScript)
	assert.Equal(t, 30*24*time.Hour, cfg.EventRetention)
	assert.False(t, cfg.IsProduction())
}

func TestLoadAppEnvWinsOverNodeEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	t.Setenv("APP_ENV", "staging")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
	assert.False(t, cfg.IsProduction())
}

func TestLoadSubjectOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUBJECT", "Jane Smith")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", cfg.Subject)
}

func TestLoadInvalidRetention(t *testing.T) {
	clearEnv(t)

	t.Setenv("EVENT_RETENTION_DAYS", "zero")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("EVENT_RETENTION_DAYS", "-1")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PORT=8080\nEVENT_RETENTION_DAYS=7\n"), 0o644))

	cfg, err := Load(envPath)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.EventRetention)

	// A missing file is a warning, not an error.
	_, err = Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
