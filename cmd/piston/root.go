package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/piston-go"
	"github.com/sakif/piston-go/internal/config"
	"github.com/sakif/piston-go/internal/repository"
	"github.com/sakif/piston-go/internal/repository/sqlite"
	"github.com/sakif/piston-go/internal/service"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds what every subcommand shares.
type app struct {
	cfg    config.CLI
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	svc     *service.RunService
	history *sqlite.DB
}

// execute runs the command line and returns the process exit status.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if a.history != nil {
		if cerr := a.history.Close(); cerr != nil {
			a.logger.Warn("failed to close history database", slog.String("error", cerr.Error()))
		}
	}

	var exit *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.code
	default:
		fmt.Fprintln(a.stderr, "piston:", err)
		return 1
	}
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "piston",
		Short:         "Run code on a Piston service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.URL, "url", a.cfg.URL, "Piston API base URL (PISTON_URL)")
	flags.StringVar(&a.cfg.APIKey, "key", a.cfg.APIKey, "API key sent as the Authorization header (PISTON_API_KEY)")
	flags.StringVar(&a.cfg.HistoryDB, "history-db", a.cfg.HistoryDB, "SQLite file recording executions; empty disables history (PISTON_HISTORY_DB)")

	root.AddCommand(
		a.newRuntimesCmd(),
		a.newRunCmd(),
		a.newHistoryCmd(),
	)
	return root
}

// open builds the client and, when configured, the history store.
func (a *app) open() error {
	opts := []piston.Option{piston.WithLogger(a.logger)}

	var client *piston.Client
	if a.cfg.APIKey != "" {
		client = piston.NewWithURLAndKey(a.cfg.URL, a.cfg.APIKey, opts...)
	} else {
		client = piston.NewWithURL(a.cfg.URL, opts...)
	}

	var repo repository.ExecutionRepository
	if a.cfg.HistoryDB != "" {
		if a.cfg.HistoryDB != ":memory:" {
			dir := filepath.Dir(a.cfg.HistoryDB)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating history directory %s: %w", dir, err)
			}
		}
		db, err := sqlite.New(a.cfg.HistoryDB)
		if err != nil {
			return err
		}
		a.history = db
		repo = db
	}

	a.svc = service.NewRunService(client, repo, a.logger)
	return nil
}
