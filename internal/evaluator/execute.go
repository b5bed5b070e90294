package evaluator

import (
	"fmt"

	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/object"
)

type StatementResultType int

const (
	NORMAL_STATEMENT_RESULT StatementResultType = iota
	RETURN_STATEMENT_RESULT
	BREAK_STATEMENT_RESULT
	CONTINUE_STATEMENT_RESULT
)

// StatementResult tells the enclosing statement list how a statement
// completed. Value is only set for a return.
type StatementResult struct {
	Type  StatementResultType
	Value object.Value
}

var normalResult = StatementResult{Type: NORMAL_STATEMENT_RESULT}

// executeStatementList stops at the first statement that does not complete
// normally and hands its result up.
func (i *Interpreter) executeStatementList(env *object.Environment, list []ast.Statement) (StatementResult, error) {
	for _, stmt := range list {
		result, err := i.executeStatement(env, stmt)
		if err != nil || result.Type != NORMAL_STATEMENT_RESULT {
			return result, err
		}
	}
	return normalResult, nil
}

func (i *Interpreter) executeStatement(env *object.Environment, stmt ast.Statement) (StatementResult, error) {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		if err := i.evalExpression(env, node.Expression); err != nil {
			return normalResult, err
		}
		i.stack.Pop()
		return normalResult, nil
	case *ast.GlobalStatement:
		return normalResult, i.executeGlobalStatement(env, node)
	case *ast.IfStatement:
		return i.executeIfStatement(env, node)
	case *ast.WhileStatement:
		return i.executeWhileStatement(env, node)
	case *ast.ForStatement:
		return i.executeForStatement(env, node)
	case *ast.ReturnStatement:
		var v object.Value = object.Null{}
		if node.ReturnValue != nil {
			if err := i.evalExpression(env, node.ReturnValue); err != nil {
				return normalResult, err
			}
			v = i.stack.Pop()
		}
		return StatementResult{Type: RETURN_STATEMENT_RESULT, Value: v}, nil
	case *ast.BreakStatement:
		return StatementResult{Type: BREAK_STATEMENT_RESULT}, nil
	case *ast.ContinueStatement:
		return StatementResult{Type: CONTINUE_STATEMENT_RESULT}, nil
	}
	panic(fmt.Sprintf("bad statement type: %T", stmt))
}

func (i *Interpreter) executeGlobalStatement(env *object.Environment, node *ast.GlobalStatement) error {
	if env == nil {
		return runtimeError(node, diag.GlobalStatementInToplevelErr)
	}
	for _, name := range node.Names {
		if env.SearchGlobalRef(name.Value) != nil {
			continue
		}
		global := i.globals.Search(name.Value)
		if global == nil {
			return runtimeError(name, diag.GlobalVariableNotFoundErr, diag.Str("name", name.Value))
		}
		env.ImportGlobal(global)
	}
	return nil
}

// evalCondition pops the value of a loop or branch condition.
func (i *Interpreter) evalCondition(env *object.Environment, cond ast.Expression) (bool, error) {
	if err := i.evalExpression(env, cond); err != nil {
		return false, err
	}
	b, ok := i.stack.Pop().(object.Boolean)
	if !ok {
		return false, runtimeError(cond, diag.NotBooleanTypeErr)
	}
	return bool(b), nil
}

func (i *Interpreter) executeIfStatement(env *object.Environment, node *ast.IfStatement) (StatementResult, error) {
	ok, err := i.evalCondition(env, node.Condition)
	if err != nil {
		return normalResult, err
	}
	if ok {
		return i.executeStatementList(env, node.Then.Statements)
	}

	for _, elsif := range node.Elsifs {
		ok, err := i.evalCondition(env, elsif.Condition)
		if err != nil {
			return normalResult, err
		}
		if ok {
			return i.executeStatementList(env, elsif.Block.Statements)
		}
	}

	if node.Else != nil {
		return i.executeStatementList(env, node.Else.Statements)
	}
	return normalResult, nil
}

func (i *Interpreter) executeWhileStatement(env *object.Environment, node *ast.WhileStatement) (StatementResult, error) {
	for {
		ok, err := i.evalCondition(env, node.Condition)
		if err != nil || !ok {
			return normalResult, err
		}

		result, err := i.executeStatementList(env, node.Body.Statements)
		if err != nil {
			return normalResult, err
		}
		switch result.Type {
		case RETURN_STATEMENT_RESULT:
			return result, nil
		case BREAK_STATEMENT_RESULT:
			return normalResult, nil
		}
	}
}

func (i *Interpreter) executeForStatement(env *object.Environment, node *ast.ForStatement) (StatementResult, error) {
	if node.Init != nil {
		if err := i.evalExpression(env, node.Init); err != nil {
			return normalResult, err
		}
		i.stack.Pop()
	}

	for {
		if node.Condition != nil {
			ok, err := i.evalCondition(env, node.Condition)
			if err != nil || !ok {
				return normalResult, err
			}
		}

		result, err := i.executeStatementList(env, node.Body.Statements)
		if err != nil {
			return normalResult, err
		}
		switch result.Type {
		case RETURN_STATEMENT_RESULT:
			return result, nil
		case BREAK_STATEMENT_RESULT:
			return normalResult, nil
		}

		if node.Post != nil {
			if err := i.evalExpression(env, node.Post); err != nil {
				return normalResult, err
			}
			i.stack.Pop()
		}
	}
}
