// Package handler contains the HTTP handlers of the mock Piston server.
//
// Handlers parse the request, call the executor backend and write the response.
// Validation mirrors Piston's own messages so a client sees the same rejection
// bodies it would get from a real instance.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/piston-go"
	"github.com/sakif/piston-go/internal/apperror"
	"github.com/sakif/piston-go/internal/executor"
)

// executeResponse is the 200 body of POST /execute. Unlike piston.ExecResponse it has
// no status field; the status travels in the HTTP response line.
type executeResponse struct {
	Language string             `json:"language"`
	Version  string             `json:"version"`
	Run      piston.ExecResult  `json:"run"`
	Compile  *piston.ExecResult `json:"compile,omitempty"`
}

// ExecuteHandler serves the Piston execute and runtimes endpoints.
type ExecuteHandler struct {
	backend executor.Backend
	logger  *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(backend executor.Backend, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		backend: backend,
		logger:  logger,
	}
}

// HandleRuntimes lists the backend's runtimes.
func (h *ExecuteHandler) HandleRuntimes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.Runtimes())
}

// HandleExecute validates a request the way Piston does and runs it on the backend.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req piston.Executor
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execute request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "request body must be a JSON object"))
		return
	}

	if err := validateExecute(req); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("executing request",
		slog.String("language", req.Language),
		slog.String("version", req.Version),
		slog.Int("files", len(req.Files)),
	)

	res, err := h.backend.Execute(r.Context(), req)
	if err != nil {
		h.logger.Warn("execution rejected", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Language: res.Language,
		Version:  res.Version,
		Run:      res.Run,
		Compile:  res.Compile,
	})
}

func validateExecute(req piston.Executor) error {
	if req.Language == "" {
		return apperror.ValidationFailed("language", "language is required as a string")
	}
	if req.Version == "" {
		return apperror.ValidationFailed("version", "version is required as a string")
	}
	if len(req.Files) == 0 {
		return apperror.ValidationFailed("files", "files is required as an array")
	}
	for i, f := range req.Files {
		if f.Content == "" {
			return apperror.ValidationFailed("files",
				fmt.Sprintf("files.%d.content is required as a string", i))
		}
	}
	return nil
}
