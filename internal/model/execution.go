// Package model defines the records kept by the execution history.
package model

import "time"

// Execution is one recorded call to Piston's execute endpoint.
//
// Rejected requests are recorded too: Status carries the HTTP status and the run
// fields hold the diagnostic the client synthesized.
type Execution struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Version  string `json:"version"`
	Status   int    `json:"status"`
	Code     int    `json:"code"`
	// Signal is empty when the run was not killed.
	Signal string `json:"signal,omitempty"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
	// CompileCode is nil when the response had no compile stage.
	CompileCode *int      `json:"compileCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
