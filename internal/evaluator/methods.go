package evaluator

import (
	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/object"
)

type methodFn func(i *Interpreter, node *ast.MethodCallExpression, receiver object.Value, args []object.Value) (object.Value, error)

// method is a built-in method with a fixed argument count.
type method struct {
	arity int
	call  methodFn
}

var arrayMethods = map[string]method{
	"add":    {arity: 1, call: arrayAdd},
	"size":   {arity: 0, call: arraySize},
	"resize": {arity: 1, call: arrayResize},
}

var stringMethods = map[string]method{
	"length": {arity: 0, call: stringLength},
}

func lookupMethod(receiver object.Value, name string) (method, bool) {
	var m method
	var ok bool
	switch receiver.(type) {
	case object.ArrayRef:
		m, ok = arrayMethods[name]
	case object.StringRef:
		m, ok = stringMethods[name]
	}
	return m, ok
}

// evalMethodCallExpression keeps the receiver and the arguments on the
// stack until the method returns.
func (i *Interpreter) evalMethodCallExpression(env *object.Environment, node *ast.MethodCallExpression) error {
	if err := i.evalExpression(env, node.Receiver); err != nil {
		return err
	}
	receiver := *i.stack.Peek(0)

	m, ok := lookupMethod(receiver, node.Method)
	if !ok {
		return runtimeError(node, diag.NoSuchMethodErr, diag.Str("method_name", node.Method))
	}
	argc := len(node.Arguments)
	switch {
	case argc < m.arity:
		return runtimeError(node, diag.ArgumentTooFewErr, diag.Str("name", node.Method))
	case argc > m.arity:
		return runtimeError(node, diag.ArgumentTooManyErr, diag.Str("name", node.Method))
	}

	for _, arg := range node.Arguments {
		if err := i.evalExpression(env, arg); err != nil {
			return err
		}
	}

	result, err := m.call(i, node, receiver, i.stack.Slice(argc))
	if err != nil {
		return err
	}
	i.stack.Shrink(argc + 1)
	i.stack.Push(result)
	return nil
}

func arrayAdd(i *Interpreter, _ *ast.MethodCallExpression, receiver object.Value, args []object.Value) (object.Value, error) {
	i.heap.ArrayAdd(receiver.(object.ArrayRef), args[0])
	return object.Null{}, nil
}

func arraySize(i *Interpreter, _ *ast.MethodCallExpression, receiver object.Value, _ []object.Value) (object.Value, error) {
	return object.Int(i.heap.ArrayLen(receiver.(object.ArrayRef))), nil
}

func arrayResize(i *Interpreter, node *ast.MethodCallExpression, receiver object.Value, args []object.Value) (object.Value, error) {
	n, ok := args[0].(object.Int)
	if !ok || n < 0 {
		return nil, runtimeError(node, diag.ArrayResizeArgumentErr)
	}
	i.heap.ArrayResize(receiver.(object.ArrayRef), int(n))
	return object.Null{}, nil
}

// stringLength counts bytes.
func stringLength(i *Interpreter, _ *ast.MethodCallExpression, receiver object.Value, _ []object.Value) (object.Value, error) {
	return object.Int(len(i.heap.StringOf(receiver.(object.StringRef)))), nil
}
