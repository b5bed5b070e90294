package foreign

import (
	"crowbar/internal/evaluator"
	"crowbar/internal/object"
)

func unpackString(ctx *evaluator.NativeContext, v object.Value) (string, bool) {
	s, ok := v.(object.StringRef)
	if !ok {
		return "", false
	}
	return ctx.StringOf(s), true
}

func unpackPointer(v object.Value, info *object.NativePointerInfo) (any, bool) {
	np, ok := v.(object.NativePointer)
	if !ok || !np.Is(info) {
		return nil, false
	}
	return np.Pointer, true
}
