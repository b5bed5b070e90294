package evaluator

import (
	"io"

	"crowbar/internal/diag"
	"crowbar/internal/object"
)

// NativeContext is what a native function sees of the interpreter during
// one call.
type NativeContext struct {
	interp *Interpreter

	// Env is the environment of this call. It is disposed on return.
	Env  *object.Environment
	Name string
	Line int
}

func (c *NativeContext) Interpreter() *Interpreter { return c.interp }
func (c *NativeContext) Heap() *object.Heap        { return c.interp.heap }
func (c *NativeContext) Out() io.Writer            { return c.interp.out }

// NewString allocates a string that stays alive until the call returns.
func (c *NativeContext) NewString(s string) object.StringRef {
	v := c.interp.heap.AllocString(s)
	c.Env.AddNativeRef(v)
	return v
}

// NewArray allocates an array of size Null elements that stays alive until
// the call returns.
func (c *NativeContext) NewArray(size int) object.ArrayRef {
	v := c.interp.heap.AllocArray(size)
	c.Env.AddNativeRef(v)
	return v
}

// StringOf returns the text of a string value.
func (c *NativeContext) StringOf(v object.StringRef) string {
	return c.interp.heap.StringOf(v)
}

func (c *NativeContext) FormatValue(v object.Value) string {
	return c.interp.FormatValue(v)
}

// Errorf builds a runtime error located at the call site.
func (c *NativeContext) Errorf(kind diag.RuntimeErrorKind, args ...diag.Arg) error {
	return diag.NewRuntimeError(kind, c.Line, args...)
}

// CheckArity compares the argument count against want exactly.
func (c *NativeContext) CheckArity(args []object.Value, want int) error {
	switch {
	case len(args) < want:
		return c.Errorf(diag.ArgumentTooFewErr, diag.Str("name", c.Name))
	case len(args) > want:
		return c.Errorf(diag.ArgumentTooManyErr, diag.Str("name", c.Name))
	}
	return nil
}

// OnDispose registers a cleanup on the interpreter.
func (c *NativeContext) OnDispose(fn func() error) {
	c.interp.OnDispose(fn)
}
