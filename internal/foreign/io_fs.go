package foreign

import (
	"errors"
	"io"
	"os"

	"crowbar/internal/diag"
	"crowbar/internal/evaluator"
	"crowbar/internal/object"
)

var fopenModes = map[string]int{
	"r":  os.O_RDONLY,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"r+": os.O_RDWR,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a+": os.O_RDWR | os.O_CREATE | os.O_APPEND,
}

// fnFopen returns null when the mode is unknown or the file cannot be
// opened.
func (r *resources) fnFopen(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 2); err != nil {
		return nil, err
	}
	path, ok := unpackString(ctx, args[0])
	if !ok {
		return nil, ctx.Errorf(diag.FopenArgumentTypeErr)
	}
	mode, ok := unpackString(ctx, args[1])
	if !ok {
		return nil, ctx.Errorf(diag.FopenArgumentTypeErr)
	}
	flag, ok := fopenModes[mode]
	if !ok {
		return object.Null{}, nil
	}

	file, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return object.Null{}, nil
	}
	r.addFile(file)
	return object.NativePointer{Info: evaluator.FilePointerInfo, Pointer: file}, nil
}

// fnFclose only closes files opened by fopen; the standard streams stay
// open.
func (r *resources) fnFclose(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 1); err != nil {
		return nil, err
	}
	ptr, ok := unpackPointer(args[0], evaluator.FilePointerInfo)
	if !ok {
		return nil, ctx.Errorf(diag.FcloseArgumentTypeErr)
	}
	if file, ok := ptr.(*os.File); ok {
		_ = r.closeFile(file)
	}
	return object.Null{}, nil
}

// fnFgets reads one line including its newline, or returns null at end of
// file.
func (r *resources) fnFgets(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 1); err != nil {
		return nil, err
	}
	ptr, ok := unpackPointer(args[0], evaluator.FilePointerInfo)
	if !ok {
		return nil, ctx.Errorf(diag.FgetsArgumentTypeErr)
	}
	stream, ok := ptr.(io.Reader)
	if !ok {
		return nil, ctx.Errorf(diag.FgetsArgumentTypeErr)
	}

	line, err := r.reader(stream).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return object.Null{}, nil
	}
	return ctx.NewString(line), nil
}

func (r *resources) fnFputs(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 2); err != nil {
		return nil, err
	}
	text, ok := unpackString(ctx, args[0])
	if !ok {
		return nil, ctx.Errorf(diag.FputsArgumentTypeErr)
	}
	ptr, ok := unpackPointer(args[1], evaluator.FilePointerInfo)
	if !ok {
		return nil, ctx.Errorf(diag.FputsArgumentTypeErr)
	}
	stream, ok := ptr.(io.Writer)
	if !ok {
		return nil, ctx.Errorf(diag.FputsArgumentTypeErr)
	}

	r.dropReader(stream)
	_, _ = io.WriteString(stream, text)
	return object.Null{}, nil
}
