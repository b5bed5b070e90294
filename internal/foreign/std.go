package foreign

import (
	"fmt"

	"crowbar/internal/diag"
	"crowbar/internal/evaluator"
	"crowbar/internal/object"
)

func fnPrint(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 1); err != nil {
		return nil, err
	}
	fmt.Fprint(ctx.Out(), ctx.FormatValue(args[0]))
	return object.Null{}, nil
}

// fnNewArray builds a multi-dimensional array of Null elements, one
// dimension per argument.
func fnNewArray(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if len(args) < 1 {
		return nil, ctx.Errorf(diag.ArgumentTooFewErr, diag.Str("name", ctx.Name))
	}
	dims := make([]int, len(args))
	for i, arg := range args {
		n, ok := arg.(object.Int)
		if !ok || n < 0 {
			return nil, ctx.Errorf(diag.NewArrayArgumentTypeErr)
		}
		dims[i] = int(n)
	}
	return newArraySub(ctx, dims), nil
}

func newArraySub(ctx *evaluator.NativeContext, dims []int) object.ArrayRef {
	array := ctx.NewArray(dims[0])
	if len(dims) > 1 {
		for i := 0; i < dims[0]; i++ {
			ctx.Heap().ArraySet(array, i, newArraySub(ctx, dims[1:]))
		}
	}
	return array
}
