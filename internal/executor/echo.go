package executor

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sakif/piston-go"
)

// exitDirective, when it starts the first file, makes the echo run exit with the
// code that follows it ("exit:3").
const exitDirective = "exit:"

// EchoRuntime is an installed runtime of the EchoBackend.
type EchoRuntime struct {
	piston.Runtime
	// Compiled runtimes report a compile stage in their responses.
	Compiled bool
}

// DefaultRuntimes is the runtime set the mock server starts with.
func DefaultRuntimes() []EchoRuntime {
	return []EchoRuntime{
		{Runtime: piston.Runtime{Language: "echo", Version: "1.0.0", Aliases: []string{"e"}}},
		{Runtime: piston.Runtime{Language: "bash", Version: "5.2.0", Aliases: []string{"sh"}}},
		{Runtime: piston.Runtime{Language: "rust", Version: "1.50.0", Aliases: []string{"rs"}}, Compiled: true},
	}
}

// EchoBackend answers every run with its stdin followed by its arguments.
type EchoBackend struct {
	runtimes []EchoRuntime
}

// NewEchoBackend creates an EchoBackend. With no runtimes, DefaultRuntimes is used.
func NewEchoBackend(runtimes ...EchoRuntime) *EchoBackend {
	if len(runtimes) == 0 {
		runtimes = DefaultRuntimes()
	}
	return &EchoBackend{runtimes: runtimes}
}

// Runtimes returns the installed runtimes in registration order.
func (b *EchoBackend) Runtimes() []piston.Runtime {
	out := make([]piston.Runtime, 0, len(b.runtimes))
	for _, rt := range b.runtimes {
		rt.Aliases = slices.Clone(rt.Aliases)
		out = append(out, rt.Runtime)
	}
	return out
}

// Execute resolves the runtime and builds the echo result.
func (b *EchoBackend) Execute(ctx context.Context, req piston.Executor) (*piston.ExecResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt, ok := b.resolve(req.Language, req.Version)
	if !ok {
		return nil, fmt.Errorf("%s-%s %w", req.Language, req.Version, ErrUnknownRuntime)
	}

	resp := &piston.ExecResponse{
		Language: rt.Language,
		Version:  rt.Version,
		Run:      echoRun(req),
	}
	if rt.Compiled {
		resp.Compile = &piston.ExecResult{}
	}
	return resp, nil
}

// resolve finds the runtime for a language name or alias. Version "*" matches any.
func (b *EchoBackend) resolve(language, version string) (EchoRuntime, bool) {
	for _, rt := range b.runtimes {
		if rt.Language != language && !slices.Contains(rt.Aliases, language) {
			continue
		}
		if version == piston.AnyVersion || version == rt.Version {
			return rt, true
		}
	}
	return EchoRuntime{}, false
}

func echoRun(req piston.Executor) piston.ExecResult {
	var out strings.Builder
	out.WriteString(req.Stdin)
	if len(req.Args) > 0 {
		out.WriteString(strings.Join(req.Args, " "))
		out.WriteString("\n")
	}

	res := piston.ExecResult{
		Stdout: out.String(),
		Output: out.String(),
	}

	if len(req.Files) > 0 {
		if code, ok := exitCode(req.Files[0].Content); ok {
			msg := fmt.Sprintf("exited with %d\n", code)
			res.Code = code
			res.Stderr = msg
			res.Output += msg
		}
	}
	return res
}

func exitCode(content string) (int, bool) {
	rest, ok := strings.CutPrefix(content, exitDirective)
	if !ok {
		return 0, false
	}
	line, _, _ := strings.Cut(rest, "\n")
	code, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	return code, true
}
