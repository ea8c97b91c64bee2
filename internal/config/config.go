package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBackendURL is the fixed local origin of the question-answering backend.
const DefaultBackendURL = "http://127.0.0.1:5001"

// Config holds all configuration values.
type Config struct {
	// Backend service
	BackendURL     string
	RequestTimeout time.Duration

	// Relay server
	RelayPort      string
	RelayURL       string
	AllowedOrigins []string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Welcome view
	PromptsFile string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment take precedence.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		BackendURL:     strings.TrimRight(getEnv("DOCCHAT_BACKEND_URL", DefaultBackendURL), "/"),
		RequestTimeout: parseDuration(getEnv("DOCCHAT_REQUEST_TIMEOUT", "2m"), 2*time.Minute),

		RelayPort:      getEnv("DOCCHAT_RELAY_PORT", "3000"),
		RelayURL:       strings.TrimRight(getEnv("DOCCHAT_RELAY_URL", "http://localhost:3000"), "/"),
		AllowedOrigins: splitList(getEnv("DOCCHAT_ALLOWED_ORIGINS", "")),

		LogFile:  getEnv("DOCCHAT_LOG_FILE", "/tmp/docchat.log"),
		LogLevel: parseLogLevel(getEnv("DOCCHAT_LOG_LEVEL", "INFO")),

		PromptsFile: getEnv("DOCCHAT_PROMPTS_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration accepts Go duration strings. "0" or "none" disables the timeout.
func parseDuration(s string, fallback time.Duration) time.Duration {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "none", "off":
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
