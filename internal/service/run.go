// Package service sits between the CLI and the Piston client.
//
// RunService executes requests and, when a history repository is configured,
// records every response. Recording is best effort: a failed insert is logged and
// the response is still returned, because the execution itself already happened.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/piston-go"
	"github.com/sakif/piston-go/internal/apperror"
	"github.com/sakif/piston-go/internal/model"
	"github.com/sakif/piston-go/internal/repository"
)

// Runner is the part of *piston.Client the service needs.
type Runner interface {
	Execute(ctx context.Context, e piston.Executor) (*piston.ExecResponse, error)
	FetchRuntimes(ctx context.Context) ([]piston.Runtime, error)
}

type RunService struct {
	client Runner
	repo   repository.ExecutionRepository // nil disables history
	logger *slog.Logger
}

// NewRunService creates a RunService. repo may be nil.
func NewRunService(client Runner, repo repository.ExecutionRepository, logger *slog.Logger) *RunService {
	return &RunService{
		client: client,
		repo:   repo,
		logger: logger,
	}
}

// Run executes e and records the response.
func (s *RunService) Run(ctx context.Context, e piston.Executor) (*piston.ExecResponse, error) {
	res, err := s.client.Execute(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", e.Language, err)
	}

	s.logger.Debug("execution finished",
		slog.String("language", res.Language),
		slog.String("version", res.Version),
		slog.Int("status", res.Status),
		slog.Int("code", res.Run.Code),
	)

	if s.repo != nil {
		rec := ToExecution(res)
		if err := s.repo.Create(ctx, rec); err != nil {
			s.logger.Warn("failed to record execution", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// Runtimes lists the runtimes of the service, optionally filtered by language or alias.
func (s *RunService) Runtimes(ctx context.Context, language string) ([]piston.Runtime, error) {
	runtimes, err := s.client.FetchRuntimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching runtimes: %w", err)
	}

	language = strings.TrimSpace(language)
	if language == "" {
		return runtimes, nil
	}

	var out []piston.Runtime
	for _, rt := range runtimes {
		if rt.Language == language || slices.Contains(rt.Aliases, language) {
			out = append(out, rt)
		}
	}
	return out, nil
}

// History lists recorded executions, newest first.
func (s *RunService) History(ctx context.Context, opts repository.ListOptions) ([]model.Execution, error) {
	if s.repo == nil {
		return nil, apperror.ValidationFailed("history", "execution history is not configured")
	}
	execs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return execs, nil
}

// Recorded returns one history entry.
func (s *RunService) Recorded(ctx context.Context, id string) (*model.Execution, error) {
	if s.repo == nil {
		return nil, apperror.ValidationFailed("history", "execution history is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "execution ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Forget deletes one history entry.
func (s *RunService) Forget(ctx context.Context, id string) error {
	if s.repo == nil {
		return apperror.ValidationFailed("history", "execution history is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "execution ID is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("execution forgotten", slog.String("id", id))
	return nil
}

// ToExecution flattens a response into a history record.
func ToExecution(res *piston.ExecResponse) *model.Execution {
	rec := &model.Execution{
		Language: res.Language,
		Version:  res.Version,
		Status:   res.Status,
		Code:     res.Run.Code,
		Stdout:   res.Run.Stdout,
		Stderr:   res.Run.Stderr,
		Output:   res.Run.Output,
	}
	if res.Run.Signal != nil {
		rec.Signal = *res.Run.Signal
	}
	if res.Compile != nil {
		code := res.Compile.Code
		rec.CompileCode = &code
	}
	return rec
}
