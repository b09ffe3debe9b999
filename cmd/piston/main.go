// Command piston runs code on a Piston service from the terminal.
//
//	piston runtimes --language python
//	piston run --language python main.py -- arg1 arg2
//	piston history --limit 5
//
// Settings come from the environment (or a .env file): PISTON_URL, PISTON_API_KEY,
// PISTON_HISTORY_DB and LOG_LEVEL. Flags override them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/piston-go/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "piston:", err)
		os.Exit(2)
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "piston:", err)
		os.Exit(2)
	}

	// Logs go to stderr so stdout carries only program output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	code := a.execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
