package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	"golang.org/x/sync/errgroup"

	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/evaluator"
	"crowbar/internal/foreign"
	"crowbar/internal/parser"
	"crowbar/internal/util"
)

// Runtime loads and runs Crowbar programs. Every program gets its own
// interpreter.
type Runtime struct {
	Config util.Configuration
	opts   []evaluator.Option
}

func NewRuntime(config util.Configuration, opts ...evaluator.Option) *Runtime {
	return &Runtime{Config: config, opts: opts}
}

// SourceError ties a compile or runtime error to the program it came from.
type SourceError struct {
	Path string
	Src  string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Context returns the source lines leading up to the failing line, if the
// error carries one.
func (e *SourceError) Context() string {
	line, ok := diag.LineOf(e.Err)
	if !ok {
		return ""
	}
	return util.ContextLines(e.Src, line)
}

// NewInterpreter returns an interpreter with the native library installed.
func (r *Runtime) NewInterpreter() *evaluator.Interpreter {
	in := evaluator.New(r.Config, r.opts...)
	foreign.Register(in)
	return in
}

// Load compiles src into in. With DebugJSONAST set the AST is written next
// to path as path.ast.json.
func (r *Runtime) Load(in *evaluator.Interpreter, path, src string) error {
	program, err := in.Compile(src)
	if err != nil {
		slog.Warn("error loading program",
			slog.String("path", path),
			slog.Any("error", err))
		return &SourceError{Path: path, Src: src, Err: err}
	}

	if r.Config.DebugJSONAST {
		r.writeAST(path, program)
	}

	slog.Info("program loaded",
		slog.String("path", path),
		slog.Int("functions", len(program.Functions)),
		slog.Int("statements", len(program.Statements)))
	return nil
}

func (r *Runtime) writeAST(path string, program *ast.Program) {
	json, err := parser.RenderASTAsJSON(program)
	if err != nil {
		slog.Error("failed to render AST as JSON", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(path+".ast.json", []byte(json), 0o644); err != nil {
		slog.Error("failed to write AST as JSON", slog.Any("error", err))
	}
}

// RunSource compiles and runs one program to completion.
func (r *Runtime) RunSource(path, src string) error {
	in := r.NewInterpreter()
	defer func() {
		if err := in.Dispose(); err != nil {
			slog.Warn("error releasing interpreter", slog.Any("error", err))
		}
	}()

	if err := r.Load(in, path, src); err != nil {
		return err
	}
	if err := in.Run(); err != nil {
		return &SourceError{Path: path, Src: src, Err: err}
	}
	return nil
}

func (r *Runtime) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	return r.RunSource(path, string(src))
}

// Check compiles every file without running it. Files are compiled
// concurrently; the result joins one SourceError per failing file, in the
// order the paths were given.
func (r *Runtime) Check(paths []string) error {
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(goruntime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("could not read %s: %w", path, err)
			}
			in := r.NewInterpreter()
			defer func() {
				if err := in.Dispose(); err != nil {
					slog.Warn("error releasing interpreter", slog.Any("error", err))
				}
			}()
			if err := r.Load(in, path, string(src)); err != nil {
				errs[i] = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
