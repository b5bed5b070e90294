package parser

import (
	"bytes"
	"crowbar/internal/ast"
	"encoding/json"
	"fmt"
	"reflect"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
// This output is designed for stability, canonical representation, and tool-chain consumption.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		functions := make([]interface{}, len(n.Functions))
		for i, f := range n.Functions {
			functions[i] = WalkAST(f)
		}
		return map[string]interface{}{
			"type":       "Program",
			"functions":  functions,
			"statements": walkStatements(n.Statements),
		}

	case *ast.FunctionDefinition:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Value
		}
		return map[string]interface{}{
			"type":       "FunctionDefinition",
			"line":       n.Line(),
			"name":       n.Name,
			"parameters": params,
			"body":       WalkAST(n.Body),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"line":       n.Line(),
			"expression": WalkAST(n.Expression),
		}

	case *ast.GlobalStatement:
		names := make([]interface{}, len(n.Names))
		for i, name := range n.Names {
			names[i] = name.Value
		}
		return map[string]interface{}{
			"type":  "GlobalStatement",
			"line":  n.Line(),
			"names": names,
		}

	case *ast.IfStatement:
		elsifs := make([]interface{}, len(n.Elsifs))
		for i, e := range n.Elsifs {
			elsifs[i] = map[string]interface{}{
				"type":      "Elsif",
				"line":      e.Token.Line,
				"condition": WalkAST(e.Condition),
				"block":     WalkAST(e.Block),
			}
		}
		return map[string]interface{}{
			"type":      "IfStatement",
			"line":      n.Line(),
			"condition": WalkAST(n.Condition),
			"then":      WalkAST(n.Then),
			"elsifs":    elsifs,
			"else":      WalkAST(n.Else),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"type":      "WhileStatement",
			"line":      n.Line(),
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
		}

	case *ast.ForStatement:
		return map[string]interface{}{
			"type":      "ForStatement",
			"line":      n.Line(),
			"init":      WalkAST(n.Init),
			"condition": WalkAST(n.Condition),
			"post":      WalkAST(n.Post),
			"body":      WalkAST(n.Body),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"type":        "ReturnStatement",
			"line":        n.Line(),
			"returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.BreakStatement:
		return map[string]interface{}{"type": "BreakStatement", "line": n.Line()}

	case *ast.ContinueStatement:
		return map[string]interface{}{"type": "ContinueStatement", "line": n.Line()}

	case *ast.Block:
		return map[string]interface{}{
			"type":       "Block",
			"line":       n.Line(),
			"statements": walkStatements(n.Statements),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"type":  "Identifier",
			"token": safeTokenLiteral(n),
			"value": n.Value,
		}

	case *ast.BooleanLiteral:
		return map[string]interface{}{
			"type":  "BooleanLiteral",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.NullLiteral:
		return map[string]interface{}{
			"type":  "NullLiteral",
			"token": n.TokenLiteral(),
		}

	case *ast.IntegerLiteral:
		return map[string]interface{}{
			"type":  "IntegerLiteral",
			"token": safeTokenLiteral(n),
			"value": n.Value,
		}

	case *ast.DoubleLiteral:
		return map[string]interface{}{
			"type":  "DoubleLiteral",
			"token": safeTokenLiteral(n),
			"value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":  "StringLiteral",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.AssignExpression:
		return map[string]interface{}{
			"type":    "AssignExpression",
			"token":   n.TokenLiteral(),
			"left":    WalkAST(n.Left),
			"operand": WalkAST(n.Operand),
		}

	case *ast.BinaryExpression:
		return map[string]interface{}{
			"type":     "BinaryExpression",
			"token":    n.TokenLiteral(),
			"left":     WalkAST(n.Left),
			"operator": n.Operator.String(),
			"right":    WalkAST(n.Right),
		}

	case *ast.MinusExpression:
		return map[string]interface{}{
			"type":    "MinusExpression",
			"token":   n.TokenLiteral(),
			"operand": WalkAST(n.Operand),
		}

	case *ast.FunctionCallExpression:
		return map[string]interface{}{
			"type":      "FunctionCallExpression",
			"token":     n.TokenLiteral(),
			"name":      n.Name,
			"arguments": walkExpressions(n.Arguments),
		}

	case *ast.MethodCallExpression:
		return map[string]interface{}{
			"type":      "MethodCallExpression",
			"token":     n.TokenLiteral(),
			"receiver":  WalkAST(n.Receiver),
			"method":    n.Method,
			"arguments": walkExpressions(n.Arguments),
		}

	case *ast.ArrayLiteral:
		return map[string]interface{}{
			"type":     "ArrayLiteral",
			"token":    n.TokenLiteral(),
			"elements": walkExpressions(n.Elements),
		}

	case *ast.IndexExpression:
		return map[string]interface{}{
			"type":  "IndexExpression",
			"token": n.TokenLiteral(),
			"array": WalkAST(n.Array),
			"index": WalkAST(n.Index),
		}

	case *ast.IncDecExpression:
		return map[string]interface{}{
			"type":     "IncDecExpression",
			"token":    n.TokenLiteral(),
			"operator": n.Operator.String(),
			"operand":  WalkAST(n.Operand),
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
			"node": fmt.Sprintf("%T", n),
		}
	}
}

func walkStatements(statements []ast.Statement) []interface{} {
	result := make([]interface{}, len(statements))
	for i, s := range statements {
		result[i] = WalkAST(s)
	}
	return result
}

func walkExpressions(expressions []ast.Expression) []interface{} {
	result := make([]interface{}, len(expressions))
	for i, e := range expressions {
		result[i] = WalkAST(e)
	}
	return result
}

func safeTokenLiteral(node ast.Node) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return ""
	}
	return node.TokenLiteral()
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
