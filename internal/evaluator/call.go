package evaluator

import (
	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/object"
)

func (i *Interpreter) evalFunctionCallExpression(env *object.Environment, node *ast.FunctionCallExpression) error {
	fn := i.searchFunction(node.Name)
	if fn == nil {
		return runtimeError(node, diag.FunctionNotFoundErr, diag.Str("name", node.Name))
	}
	if fn.native != nil {
		return i.callNative(env, node, fn)
	}
	return i.callFunction(env, node, fn)
}

// callFunction evaluates the arguments in the caller's environment and binds
// them to the parameters of a fresh one.
func (i *Interpreter) callFunction(env *object.Environment, node *ast.FunctionCallExpression, fn *function) error {
	params := fn.def.Parameters
	for n, arg := range node.Arguments {
		if n >= len(params) {
			return runtimeError(node, diag.ArgumentTooManyErr, diag.Str("name", fn.name))
		}
		if err := i.evalExpression(env, arg); err != nil {
			return err
		}
	}
	argc := len(node.Arguments)
	if argc < len(params) {
		return runtimeError(node, diag.ArgumentTooFewErr, diag.Str("name", fn.name))
	}

	callee := object.NewEnvironment()
	for n, v := range i.stack.Slice(argc) {
		callee.AddLocal(params[n].Value, v)
	}
	i.stack.Shrink(argc)
	i.pushEnv(callee, fn.name)

	result, err := i.executeStatementList(callee, fn.def.Body.Statements)
	if err != nil {
		return err
	}

	var v object.Value = object.Null{}
	if result.Type == RETURN_STATEMENT_RESULT {
		v = result.Value
	}
	i.popEnv()
	i.stack.Push(v)
	return nil
}

func (i *Interpreter) callNative(env *object.Environment, node *ast.FunctionCallExpression, fn *function) error {
	for _, arg := range node.Arguments {
		if err := i.evalExpression(env, arg); err != nil {
			return err
		}
	}
	argc := len(node.Arguments)

	callee := object.NewEnvironment()
	i.pushEnv(callee, fn.name)

	ctx := &NativeContext{interp: i, Env: callee, Name: fn.name, Line: node.Line()}
	args := append([]object.Value(nil), i.stack.Slice(argc)...)
	v, err := fn.native(ctx, args)
	if err != nil {
		return err
	}
	if v == nil {
		v = object.Null{}
	}

	i.popEnv()
	i.stack.Shrink(argc)
	i.stack.Push(v)
	return nil
}
