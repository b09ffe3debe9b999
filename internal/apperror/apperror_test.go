package apperror

import (
	"context"
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "Transport wraps ErrTransport",
			err:       Transport("sending request", errors.New("connection refused")),
			target:    ErrTransport,
			wantMatch: true,
		},
		{
			name:      "Transport keeps its cause reachable",
			err:       Transport("sending request", context.DeadlineExceeded),
			target:    context.DeadlineExceeded,
			wantMatch: true,
		},
		{
			name:      "Decode wraps ErrDecode",
			err:       Decode("execute response", errors.New("unexpected EOF")),
			target:    ErrDecode,
			wantMatch: true,
		},
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("execution", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("language", "language is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid api key"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Transport does NOT match ErrDecode",
			err:       Transport("sending request", errors.New("boom")),
			target:    ErrDecode,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("execution", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("execution", "abc123"),
			wantMessage: "execution not found with id abc123",
		},
		{
			name:        "Transport message includes the cause",
			err:         Transport("sending request", errors.New("connection refused")),
			wantMessage: "sending request: connection refused",
		},
		{
			name:        "Decode message names what failed",
			err:         Decode("runtimes", errors.New("unexpected EOF")),
			wantMessage: "decoding runtimes: unexpected EOF",
		},
		{
			name:        "UnexpectedStatus includes code and body",
			err:         UnexpectedStatus(503, "down"),
			wantMessage: "unexpected status 503: down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	var err error = ValidationFailed("files", "at least one file is required")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As did not find *AppError")
	}
	if appErr.Field != "files" {
		t.Errorf("Field = %q, want %q", appErr.Field, "files")
	}
}
