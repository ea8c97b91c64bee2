package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DOCCHAT_BACKEND_URL", "DOCCHAT_REQUEST_TIMEOUT", "DOCCHAT_RELAY_PORT",
		"DOCCHAT_RELAY_URL", "DOCCHAT_ALLOWED_ORIGINS", "DOCCHAT_LOG_LEVEL", "DOCCHAT_PROMPTS_FILE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, "3000", cfg.RelayPort)
	assert.Equal(t, "http://localhost:3000", cfg.RelayURL)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DOCCHAT_BACKEND_URL", "http://backend:5001/")
	t.Setenv("DOCCHAT_REQUEST_TIMEOUT", "30s")
	t.Setenv("DOCCHAT_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DOCCHAT_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "http://backend:5001", cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"45s", 45 * time.Second},
		{"0", 0},
		{"none", 0},
		{"garbage", time.Minute},
		{"-5s", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDuration(tt.in, time.Minute))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("session created", "session_id", "abc")

	assert.Contains(t, stderr.String(), "session created")
	assert.NotContains(t, stderr.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &entry))
	assert.Equal(t, "session created", entry["msg"])
	assert.Equal(t, "abc", entry["session_id"])
}

func TestSetupFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.log")
	logger, cleanup := SetupFileLogger(path, slog.LevelInfo)
	logger.Info("hello")
	require.NoError(t, cleanup())

	t.Run("unwritable path discards", func(t *testing.T) {
		logger, cleanup := SetupFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), slog.LevelInfo)
		logger.Info("dropped")
		assert.NoError(t, cleanup())
	})
}
