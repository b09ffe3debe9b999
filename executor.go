package piston

import "slices"

// AnyVersion asks Piston for whichever version of a language it has installed.
const AnyVersion = "*"

// Executor describes a single execution request.
//
// Executor is a value: every setter returns an updated copy and leaves the receiver
// untouched, so configuration chains naturally:
//
//	e := piston.NewExecutor().
//		SetLanguage("rust").
//		SetVersion("1.50.0").
//		AddFile(piston.NewFile("main.rs", src))
//
// Nothing is validated here. An empty language or file list is sent as-is and
// rejected by the service, which Client.Execute reports as data.
//
// Timeouts and CPU times are in milliseconds, memory limits in bytes. A nil limit is
// omitted from the request and the service default applies.
type Executor struct {
	Language           string   `json:"language"`
	Version            string   `json:"version"`
	Files              []File   `json:"files"`
	Stdin              string   `json:"stdin,omitempty"`
	Args               []string `json:"args,omitempty"`
	CompileTimeout     *int64   `json:"compile_timeout,omitempty"`
	RunTimeout         *int64   `json:"run_timeout,omitempty"`
	CompileCPUTime     *int64   `json:"compile_cpu_time,omitempty"`
	RunCPUTime         *int64   `json:"run_cpu_time,omitempty"`
	CompileMemoryLimit *int64   `json:"compile_memory_limit,omitempty"`
	RunMemoryLimit     *int64   `json:"run_memory_limit,omitempty"`
}

// NewExecutor returns an empty Executor that accepts any language version. Files
// starts as an empty list so the request always carries "files": [].
func NewExecutor() Executor {
	return Executor{Version: AnyVersion, Files: []File{}}
}

// Reset returns a fresh Executor, discarding every setting.
func (e Executor) Reset() Executor {
	return NewExecutor()
}

func (e Executor) SetLanguage(language string) Executor {
	e.Language = language
	return e
}

func (e Executor) SetVersion(version string) Executor {
	e.Version = version
	return e
}

// AddFile appends a file. The file list of the receiver is not shared with the result.
func (e Executor) AddFile(f File) Executor {
	e.Files = append(slices.Clip(e.Files), f)
	return e
}

func (e Executor) AddFiles(files ...File) Executor {
	e.Files = append(slices.Clip(e.Files), files...)
	return e
}

// SetFiles replaces the file list with a copy of files.
func (e Executor) SetFiles(files []File) Executor {
	e.Files = append([]File{}, files...)
	return e
}

func (e Executor) SetStdin(stdin string) Executor {
	e.Stdin = stdin
	return e
}

func (e Executor) AddArg(arg string) Executor {
	e.Args = append(slices.Clip(e.Args), arg)
	return e
}

func (e Executor) AddArgs(args ...string) Executor {
	e.Args = append(slices.Clip(e.Args), args...)
	return e
}

// SetArgs replaces the argument list with a copy of args.
func (e Executor) SetArgs(args []string) Executor {
	e.Args = slices.Clone(args)
	return e
}

func (e Executor) SetCompileTimeout(ms int64) Executor {
	e.CompileTimeout = &ms
	return e
}

func (e Executor) SetRunTimeout(ms int64) Executor {
	e.RunTimeout = &ms
	return e
}

func (e Executor) SetCompileCPUTime(ms int64) Executor {
	e.CompileCPUTime = &ms
	return e
}

func (e Executor) SetRunCPUTime(ms int64) Executor {
	e.RunCPUTime = &ms
	return e
}

func (e Executor) SetCompileMemoryLimit(bytes int64) Executor {
	e.CompileMemoryLimit = &bytes
	return e
}

func (e Executor) SetRunMemoryLimit(bytes int64) Executor {
	e.RunMemoryLimit = &bytes
	return e
}
