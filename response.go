package piston

import "net/http"

// ExecResult is the outcome of one stage (compile or run) of an execution.
type ExecResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	// Output is stdout and stderr interleaved in the order they were written.
	Output string `json:"output"`
	Code   int    `json:"code"`
	// Signal names the signal that terminated the process, if any.
	Signal *string `json:"signal"`
}

// IsOK reports whether the stage exited with code 0 and was not killed by a signal.
func (r ExecResult) IsOK() bool {
	return r.Code == 0 && r.Signal == nil
}

func (r ExecResult) IsErr() bool {
	return !r.IsOK()
}

// ExecResponse is what Client.Execute returns for every request that got a reply.
//
// Run is always populated. When the service rejected the request, Run carries the
// diagnostic in Stderr and Output with Code 1, and Status holds the HTTP status.
// Compile is nil unless the service ran a compile stage.
type ExecResponse struct {
	Language string      `json:"language"`
	Version  string      `json:"version"`
	Run      ExecResult  `json:"run"`
	Compile  *ExecResult `json:"compile,omitempty"`
	Status   int         `json:"status"`
}

// IsOK reports whether the service accepted the request and every stage succeeded.
func (r ExecResponse) IsOK() bool {
	if r.Status != http.StatusOK || !r.Run.IsOK() {
		return false
	}
	return r.Compile == nil || r.Compile.IsOK()
}

func (r ExecResponse) IsErr() bool {
	return !r.IsOK()
}

// rawExecResponse is the body Piston sends with a 200.
type rawExecResponse struct {
	Language string      `json:"language"`
	Version  string      `json:"version"`
	Run      ExecResult  `json:"run"`
	Compile  *ExecResult `json:"compile,omitempty"`
}

// Runtime is one language/version pair installed on the service.
type Runtime struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Aliases  []string `json:"aliases"`
	// Runtime is set when several languages share an interpreter (node for typescript).
	Runtime string `json:"runtime,omitempty"`
}
