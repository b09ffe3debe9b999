package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/piston-go"
)

type runFlags struct {
	language      string
	version       string
	stdin         string
	stdinFile     string
	compileTO     int64
	runTO         int64
	compileCPU    int64
	runCPU        int64
	compileMemory int64
	runMemory     int64
	asJSON        bool
}

func (a *app) newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run --language LANG [flags] FILE... [-- ARGS...]",
		Short: "Execute source files and mirror the program's exit status",
		Long: `Execute source files on the service.

The first file is the entry point. Arguments after "--" are passed to the program.
The program's stdout and stderr are copied to the terminal and piston exits with
the program's exit code. A request the service refuses exits 1 with the service's
message on stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, progArgs := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				files, progArgs = args[:dash], args[dash:]
			}
			if len(files) == 0 {
				return fmt.Errorf("at least one source file is required")
			}

			e, err := a.buildExecutor(cmd, f, files, progArgs)
			if err != nil {
				return err
			}

			res, err := a.svc.Run(cmd.Context(), e)
			if err != nil {
				return err
			}

			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			}

			if code := exitCode(res); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.language, "language", "l", "", "language or alias to run (required)")
	flags.StringVarP(&f.version, "version", "v", piston.AnyVersion, "runtime version; * picks the latest")
	flags.StringVar(&f.stdin, "stdin", "", "text passed to the program's standard input")
	flags.StringVar(&f.stdinFile, "stdin-file", "", `file passed to the program's standard input; "-" reads this terminal's stdin`)
	flags.Int64Var(&f.compileTO, "compile-timeout", 0, "compile wall-clock limit in milliseconds")
	flags.Int64Var(&f.runTO, "run-timeout", 0, "run wall-clock limit in milliseconds")
	flags.Int64Var(&f.compileCPU, "compile-cpu-time", 0, "compile CPU time limit in milliseconds")
	flags.Int64Var(&f.runCPU, "run-cpu-time", 0, "run CPU time limit in milliseconds")
	flags.Int64Var(&f.compileMemory, "compile-memory-limit", 0, "compile memory limit in bytes")
	flags.Int64Var(&f.runMemory, "run-memory-limit", 0, "run memory limit in bytes")
	flags.BoolVar(&f.asJSON, "json", false, "print the whole response as JSON")
	cmd.MarkFlagsMutuallyExclusive("stdin", "stdin-file")
	_ = cmd.MarkFlagRequired("language")
	return cmd
}

// buildExecutor turns flags and positional arguments into a request. Limits left
// at zero are not sent, so the service defaults apply.
func (a *app) buildExecutor(cmd *cobra.Command, f runFlags, paths, args []string) (piston.Executor, error) {
	e := piston.NewExecutor().
		SetLanguage(f.language).
		SetVersion(f.version).
		AddArgs(args...)

	for _, p := range paths {
		file, err := piston.LoadFile(p)
		if err != nil {
			return piston.Executor{}, err
		}
		e = e.AddFile(file)
	}

	switch {
	case f.stdin != "":
		e = e.SetStdin(f.stdin)
	case f.stdinFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return piston.Executor{}, fmt.Errorf("reading stdin: %w", err)
		}
		e = e.SetStdin(string(data))
	case f.stdinFile != "":
		data, err := os.ReadFile(f.stdinFile)
		if err != nil {
			return piston.Executor{}, fmt.Errorf("reading stdin file: %w", err)
		}
		e = e.SetStdin(string(data))
	}

	if f.compileTO > 0 {
		e = e.SetCompileTimeout(f.compileTO)
	}
	if f.runTO > 0 {
		e = e.SetRunTimeout(f.runTO)
	}
	if f.compileCPU > 0 {
		e = e.SetCompileCPUTime(f.compileCPU)
	}
	if f.runCPU > 0 {
		e = e.SetRunCPUTime(f.runCPU)
	}
	if f.compileMemory > 0 {
		e = e.SetCompileMemoryLimit(f.compileMemory)
	}
	if f.runMemory > 0 {
		e = e.SetRunMemoryLimit(f.runMemory)
	}
	return e, nil
}

// printResult copies compile diagnostics and the program's streams to the terminal.
func printResult(stdout, stderr io.Writer, res *piston.ExecResponse) {
	if res.Compile != nil {
		io.WriteString(stderr, res.Compile.Stderr)
		if res.Compile.IsErr() {
			return
		}
	}
	io.WriteString(stdout, res.Run.Stdout)
	io.WriteString(stderr, res.Run.Stderr)
	if res.Run.Signal != nil {
		fmt.Fprintf(stderr, "killed by %s\n", *res.Run.Signal)
	}
}

// exitCode mirrors the program's status. A failed compile wins over the run, and a
// signal with a zero code still reports failure.
func exitCode(res *piston.ExecResponse) int {
	if res.Compile != nil && res.Compile.IsErr() {
		return processStatus(res.Compile.Code)
	}
	if res.Run.Code != 0 {
		return processStatus(res.Run.Code)
	}
	if res.IsErr() {
		return 1
	}
	return 0
}

// processStatus maps a remote exit code onto 1..255. Codes the OS would truncate
// (256 becomes 0) and zero or negative codes report plain failure.
func processStatus(code int) int {
	if code < 1 || code > 255 {
		return 1
	}
	return code
}
