package evaluator

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/object"
	"crowbar/internal/parser"
	"crowbar/internal/util"
)

// FilePointerInfo tags native pointers that wrap a stream: the standard
// streams bound at start-up and files opened by fopen.
var FilePointerInfo = &object.NativePointerInfo{Name: "crowbar.file"}

// NativeFunction is the calling convention of host functions. args aliases
// nothing the callee may keep; heap values it allocates must go through the
// context so they stay rooted until the call returns.
type NativeFunction func(ctx *NativeContext, args []object.Value) (object.Value, error)

type function struct {
	name   string
	def    *ast.FunctionDefinition
	native NativeFunction
}

// Interpreter holds everything one program needs: its functions, its
// globals, the heap and the operand stack. Interpreters share nothing.
type Interpreter struct {
	cfg    util.Configuration
	logger *slog.Logger

	globals    object.VariableList
	functions  []*function
	statements []ast.Statement

	heap  *object.Heap
	stack *object.Stack
	envs  []*object.Environment

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	disposers []func() error
	started   bool
}

type Option func(*Interpreter)

func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

func WithErrorOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.errOut = w }
}

func WithInput(r io.Reader) Option {
	return func(i *Interpreter) { i.in = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

func New(cfg util.Configuration, opts ...Option) *Interpreter {
	i := &Interpreter{
		cfg:    cfg,
		logger: slog.Default(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(i)
	}
	heapConfig := cfg.HeapConfig()
	heapConfig.Logger = i.logger
	i.heap = object.NewHeap(heapConfig, i)
	i.stack = object.NewStack(cfg.StackChunk)
	return i
}

func (i *Interpreter) Heap() *object.Heap   { return i.heap }
func (i *Interpreter) Stack() *object.Stack { return i.stack }
func (i *Interpreter) Out() io.Writer       { return i.out }

// EnvDepth returns the number of active function calls.
func (i *Interpreter) EnvDepth() int { return len(i.envs) }

func (i *Interpreter) functionNames() []string {
	names := make([]string, len(i.functions))
	for n, fn := range i.functions {
		names[n] = fn.name
	}
	return names
}

func (i *Interpreter) searchFunction(name string) *function {
	for _, fn := range i.functions {
		if fn.name == name {
			return fn
		}
	}
	return nil
}

// Compile parses src and queues it for the next Run. Functions already
// known to the interpreter, natives included, cannot be redefined.
func (i *Interpreter) Compile(src string) (*ast.Program, error) {
	program, err := parser.Parse(src, i.functionNames()...)
	if err != nil {
		return nil, err
	}
	if err := i.Load(program); err != nil {
		return nil, err
	}
	return program, nil
}

// Load queues a program built by hand with an ast.Builder.
func (i *Interpreter) Load(program *ast.Program) error {
	for _, fd := range program.Functions {
		if i.searchFunction(fd.Name) != nil {
			return diag.NewCompileError(diag.FunctionMultipleDefineErr, fd.Line(), diag.Str("name", fd.Name))
		}
	}
	for _, fd := range program.Functions {
		i.functions = append(i.functions, &function{name: fd.Name, def: fd})
	}
	i.statements = append(i.statements, program.Statements...)
	return nil
}

// RegisterNative adds a host function. A later registration under the same
// name is never reached.
func (i *Interpreter) RegisterNative(name string, fn NativeFunction) {
	i.functions = append(i.functions, &function{name: name, native: fn})
}

// AddGlobal binds a global variable, shadowing any earlier one of that name.
func (i *Interpreter) AddGlobal(name string, v object.Value) {
	i.globals.Add(name, v)
}

func (i *Interpreter) Global(name string) (object.Value, bool) {
	if v := i.globals.Search(name); v != nil {
		return v.Value, true
	}
	return nil, false
}

// OnDispose registers a cleanup that runs when the interpreter is disposed,
// newest first.
func (i *Interpreter) OnDispose(fn func() error) {
	i.disposers = append(i.disposers, fn)
}

func (i *Interpreter) addStdStreams() {
	i.AddGlobal("STDIN", object.NativePointer{Info: FilePointerInfo, Pointer: i.in})
	i.AddGlobal("STDOUT", object.NativePointer{Info: FilePointerInfo, Pointer: i.out})
	i.AddGlobal("STDERR", object.NativePointer{Info: FilePointerInfo, Pointer: i.errOut})
}

// Run executes the statements queued since the last Run. After a runtime
// error the operand stack and call chain are cleared, so the interpreter
// can keep compiling and running.
func (i *Interpreter) Run() error {
	if !i.started {
		i.addStdStreams()
		i.started = true
	}

	statements := i.statements
	i.statements = nil

	i.logger.Debug("run begin", slog.Int("statements", len(statements)))
	_, err := i.executeStatementList(nil, statements)
	if err != nil {
		i.reset()
		i.logger.Debug("run failed", slog.String("error", err.Error()))
		return err
	}
	i.logger.Debug("run end", slog.Int("heap_size", i.heap.Size()))
	return nil
}

func (i *Interpreter) reset() {
	for len(i.envs) > 0 {
		i.popEnv()
	}
	i.stack.Reset()
}

// Dispose releases every resource the interpreter holds. The interpreter
// must not be used afterwards.
func (i *Interpreter) Dispose() error {
	var errs []error
	for n := len(i.disposers) - 1; n >= 0; n-- {
		if err := i.disposers[n](); err != nil {
			errs = append(errs, err)
		}
	}
	i.disposers = nil

	i.reset()
	i.globals = object.VariableList{}
	i.statements = nil
	i.heap.Dispose()
	return errors.Join(errs...)
}

// ScanRoots reports the globals, every active environment and the live
// stack slots to the collector.
func (i *Interpreter) ScanRoots(mark func(object.Value)) {
	i.globals.Each(func(v *object.Variable) { mark(v.Value) })
	for _, env := range i.envs {
		env.ScanRoots(mark)
	}
	i.stack.Each(mark)
}

func (i *Interpreter) pushEnv(env *object.Environment, name string) {
	i.envs = append(i.envs, env)
	i.logger.Debug("push stack frame", slog.String("function", name), slog.Int("depth", len(i.envs)))
}

func (i *Interpreter) popEnv() {
	env := i.envs[len(i.envs)-1]
	i.envs[len(i.envs)-1] = nil
	i.envs = i.envs[:len(i.envs)-1]
	env.Dispose()
	i.logger.Debug("pop stack frame", slog.Int("depth", len(i.envs)))
}

func runtimeError(node ast.Node, kind diag.RuntimeErrorKind, args ...diag.Arg) error {
	return diag.NewRuntimeError(kind, node.Line(), args...)
}
