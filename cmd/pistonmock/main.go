// Command pistonmock serves a stand-in for the Piston v2 API.
//
// It answers GET /runtimes and POST /execute (also under /api/v2/piston) from an
// in-memory echo backend, with Piston's validation messages, optional API key
// checking and per-IP rate limiting. Point the client or the piston CLI at
// http://localhost:$PORT/api/v2/piston to exercise them without a real sandbox.
//
// The main package stays small: read configuration, build dependencies, start.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/piston-go/internal/auth"
	"github.com/sakif/piston-go/internal/config"
	"github.com/sakif/piston-go/internal/executor"
	"github.com/sakif/piston-go/internal/server"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// === 1. CONFIGURATION ===
	// PORT, PISTON_API_KEY_HASH, RATE_LIMIT_RPS, RATE_LIMIT_BURST,
	// MAX_CONCURRENT_JOBS, LOG_LEVEL.
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.APIKeyHash == "" {
		logger.Warn("PISTON_API_KEY_HASH not set, API key checking is disabled")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		APIKeyHash: cfg.APIKeyHash,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
		MaxJobs:    cfg.MaxJobs,
	}, logger, executor.NewEchoBackend(), auth.NewKeyService())
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
