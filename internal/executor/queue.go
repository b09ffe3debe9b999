package executor

import (
	"context"
	"log/slog"

	"github.com/sakif/piston-go"
)

// Queue bounds how many executions a Backend runs at once. Requests beyond the
// limit wait for a slot until their context ends.
type Queue struct {
	backend Backend
	logger  *slog.Logger
	slots   chan struct{}
}

// NewQueue wraps backend so at most size executions run concurrently. A size
// below 1 is treated as 1.
func NewQueue(backend Backend, size int, logger *slog.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		backend: backend,
		logger:  logger,
		slots:   make(chan struct{}, size),
	}
}

// Execute waits for a free slot, then runs req on the wrapped backend.
func (q *Queue) Execute(ctx context.Context, req piston.Executor) (*piston.ExecResponse, error) {
	select {
	case q.slots <- struct{}{}:
	default:
		q.logger.Debug("execution queued",
			slog.String("language", req.Language),
			slog.Int("running", len(q.slots)),
		)
		select {
		case q.slots <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	defer func() { <-q.slots }()

	return q.backend.Execute(ctx, req)
}

func (q *Queue) Runtimes() []piston.Runtime {
	return q.backend.Runtimes()
}
