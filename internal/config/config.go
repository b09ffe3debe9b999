// Package config reads settings for the piston CLI and the mock server from the
// environment. A .env file in the working directory is loaded first when present;
// variables already set in the environment win over it.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/sakif/piston-go"
)

// CLI configures the piston command.
type CLI struct {
	URL       string
	APIKey    string // empty means no Authorization header
	HistoryDB string // empty disables history
	LogLevel  slog.Level
}

// Server configures the pistonmock command.
type Server struct {
	Port       int
	APIKeyHash string
	RateLimit  rate.Limit
	RateBurst  int
	MaxJobs    int
	LogLevel   slog.Level
}

// LoadDotEnv loads .env if it exists. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// LoadCLI reads PISTON_URL, PISTON_API_KEY, PISTON_HISTORY_DB and LOG_LEVEL.
func LoadCLI() (CLI, error) {
	level, err := ParseLevel(getEnv("LOG_LEVEL", "warn"))
	if err != nil {
		return CLI{}, err
	}
	return CLI{
		URL:       getEnv("PISTON_URL", piston.DefaultURL),
		APIKey:    getEnv("PISTON_API_KEY", ""),
		HistoryDB: getEnv("PISTON_HISTORY_DB", ""),
		LogLevel:  level,
	}, nil
}

// LoadServer reads PORT, PISTON_API_KEY_HASH, RATE_LIMIT_RPS, RATE_LIMIT_BURST,
// MAX_CONCURRENT_JOBS and LOG_LEVEL.
func LoadServer() (Server, error) {
	port, err := strconv.Atoi(getEnv("PORT", "2000"))
	if err != nil || port < 0 || port > 65535 {
		return Server{}, fmt.Errorf("invalid PORT value %q", os.Getenv("PORT"))
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "0"), 64)
	if err != nil || rps < 0 {
		return Server{}, fmt.Errorf("invalid RATE_LIMIT_RPS value %q", os.Getenv("RATE_LIMIT_RPS"))
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil || burst < 1 {
		return Server{}, fmt.Errorf("invalid RATE_LIMIT_BURST value %q", os.Getenv("RATE_LIMIT_BURST"))
	}

	jobs, err := strconv.Atoi(getEnv("MAX_CONCURRENT_JOBS", "64"))
	if err != nil || jobs < 0 {
		return Server{}, fmt.Errorf("invalid MAX_CONCURRENT_JOBS value %q", os.Getenv("MAX_CONCURRENT_JOBS"))
	}

	level, err := ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Server{}, err
	}

	return Server{
		Port:       port,
		APIKeyHash: getEnv("PISTON_API_KEY_HASH", ""),
		RateLimit:  rate.Limit(rps),
		RateBurst:  burst,
		MaxJobs:    jobs,
		LogLevel:   level,
	}, nil
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL value %q", s)
	}
	return level, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
