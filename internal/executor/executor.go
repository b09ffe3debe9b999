// Package executor defines the backends the mock Piston server answers with.
//
// The mock server never runs user code. A Backend turns a request into a canned,
// deterministic response so the client can be exercised end to end offline.
package executor

import (
	"context"
	"errors"

	"github.com/sakif/piston-go"
)

// ErrUnknownRuntime is returned when no installed runtime matches the requested
// language and version.
var ErrUnknownRuntime = errors.New("runtime is unknown")

// Backend represents anything that can answer Piston execute and runtimes calls.
type Backend interface {
	Execute(ctx context.Context, req piston.Executor) (*piston.ExecResponse, error)
	Runtimes() []piston.Runtime
}
