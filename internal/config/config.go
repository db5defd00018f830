package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string
	ServerAddr   string
	LogLevel     slog.Level

	// Browser origins allowed to call the API, e.g. a scoreboard display
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Load reads .env when present, then the process environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DatabasePath: getenv("DATABASE_PATH", "tournament.db"),
		ServerAddr:   getenv("SERVER_ADDR", ":8080"),
		LogLevel:     slog.LevelInfo,

		AllowedOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: 15 * time.Second,
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
	}

	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", raw, err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
