package evaluator

import (
	"fmt"
	"math"

	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/object"
)

// evalExpression leaves exactly one value on the stack when it succeeds.
// env is nil at top level.
func (i *Interpreter) evalExpression(env *object.Environment, expr ast.Expression) error {
	switch node := expr.(type) {
	case *ast.BooleanLiteral:
		i.stack.Push(object.Boolean(node.Value))
	case *ast.IntegerLiteral:
		i.stack.Push(object.Int(node.Value))
	case *ast.DoubleLiteral:
		i.stack.Push(object.Double(node.Value))
	case *ast.StringLiteral:
		i.stack.Push(i.heap.AllocLiteral(node.Value))
	case *ast.NullLiteral:
		i.stack.Push(object.Null{})
	case *ast.Identifier:
		return i.evalIdentifier(env, node)
	case *ast.AssignExpression:
		return i.evalAssignExpression(env, node)
	case *ast.BinaryExpression:
		if node.Operator == ast.LOGICAL_AND || node.Operator == ast.LOGICAL_OR {
			return i.evalLogicalExpression(env, node)
		}
		return i.evalBinaryExpression(env, node)
	case *ast.MinusExpression:
		return i.evalMinusExpression(env, node)
	case *ast.FunctionCallExpression:
		return i.evalFunctionCallExpression(env, node)
	case *ast.MethodCallExpression:
		return i.evalMethodCallExpression(env, node)
	case *ast.ArrayLiteral:
		return i.evalArrayLiteral(env, node)
	case *ast.IndexExpression:
		slot, err := i.evalIndexLvalue(env, node)
		if err != nil {
			return err
		}
		v := *slot
		i.stack.Shrink(2)
		i.stack.Push(v)
	case *ast.IncDecExpression:
		return i.evalIncDecExpression(env, node)
	default:
		panic(fmt.Sprintf("bad expression type: %T", expr))
	}
	return nil
}

// searchVariable resolves name against the locals and imported globals of
// env, or against the globals at top level.
func (i *Interpreter) searchVariable(env *object.Environment, name string) *object.Variable {
	if env != nil {
		if v := env.SearchLocal(name); v != nil {
			return v
		}
		return env.SearchGlobalRef(name)
	}
	return i.globals.Search(name)
}

func (i *Interpreter) evalIdentifier(env *object.Environment, node *ast.Identifier) error {
	v := i.searchVariable(env, node.Value)
	if v == nil {
		return runtimeError(node, diag.VariableNotFoundErr, diag.Str("name", node.Value))
	}
	i.stack.Push(v.Value)
	return nil
}

func (i *Interpreter) evalAssignExpression(env *object.Environment, node *ast.AssignExpression) error {
	if err := i.evalExpression(env, node.Operand); err != nil {
		return err
	}
	src := *i.stack.Peek(0)

	switch left := node.Left.(type) {
	case *ast.Identifier:
		if v := i.searchVariable(env, left.Value); v != nil {
			v.Value = src
		} else if env != nil {
			env.AddLocal(left.Value, src)
		} else {
			i.globals.Add(left.Value, src)
		}
	case *ast.IndexExpression:
		slot, err := i.evalIndexLvalue(env, left)
		if err != nil {
			return err
		}
		*slot = src
		i.stack.Shrink(2)
	default:
		return runtimeError(node, diag.NotLvalueErr)
	}
	return nil
}

// evalIndexLvalue leaves the array and the index on the stack and returns
// the element slot. The caller shrinks the stack by two.
func (i *Interpreter) evalIndexLvalue(env *object.Environment, node *ast.IndexExpression) (*object.Value, error) {
	if err := i.evalExpression(env, node.Array); err != nil {
		return nil, err
	}
	if err := i.evalExpression(env, node.Index); err != nil {
		return nil, err
	}

	array, ok := (*i.stack.Peek(1)).(object.ArrayRef)
	if !ok {
		return nil, runtimeError(node, diag.IndexOperandNotArrayErr)
	}
	index, ok := (*i.stack.Peek(0)).(object.Int)
	if !ok {
		return nil, runtimeError(node, diag.IndexOperandNotIntErr)
	}
	size := i.heap.ArrayLen(array)
	if index < 0 || int64(index) >= int64(size) {
		return nil, runtimeError(node, diag.ArrayIndexOutOfBoundsErr,
			diag.Int("size", int64(size)), diag.Int("index", int64(index)))
	}
	return i.heap.ArraySlot(array, int(index)), nil
}

func (i *Interpreter) evalIncDecExpression(env *object.Environment, node *ast.IncDecExpression) error {
	var slot *object.Value
	pushed := 0

	switch operand := node.Operand.(type) {
	case *ast.Identifier:
		v := i.searchVariable(env, operand.Value)
		if v == nil {
			return runtimeError(node, diag.VariableNotFoundErr, diag.Str("name", operand.Value))
		}
		slot = &v.Value
	case *ast.IndexExpression:
		s, err := i.evalIndexLvalue(env, operand)
		if err != nil {
			return err
		}
		slot = s
		pushed = 2
	default:
		return runtimeError(node, diag.NotLvalueErr)
	}

	old, ok := (*slot).(object.Int)
	if !ok {
		return runtimeError(node, diag.IncDecOperandTypeErr)
	}
	if node.Operator == ast.INCREMENT {
		*slot = old + 1
	} else {
		*slot = old - 1
	}

	i.stack.Shrink(pushed)
	i.stack.Push(old)
	return nil
}

func (i *Interpreter) evalMinusExpression(env *object.Environment, node *ast.MinusExpression) error {
	if err := i.evalExpression(env, node.Operand); err != nil {
		return err
	}
	top := i.stack.Peek(0)
	switch v := (*top).(type) {
	case object.Int:
		*top = -v
	case object.Double:
		*top = -v
	default:
		return runtimeError(node, diag.MinusOperandTypeErr)
	}
	return nil
}

func (i *Interpreter) evalLogicalExpression(env *object.Environment, node *ast.BinaryExpression) error {
	if err := i.evalExpression(env, node.Left); err != nil {
		return err
	}
	left, ok := (*i.stack.Peek(0)).(object.Boolean)
	if !ok {
		return runtimeError(node.Left, diag.NotBooleanTypeErr)
	}
	if node.Operator == ast.LOGICAL_AND && !bool(left) || node.Operator == ast.LOGICAL_OR && bool(left) {
		return nil
	}

	i.stack.Pop()
	if err := i.evalExpression(env, node.Right); err != nil {
		return err
	}
	if _, ok := (*i.stack.Peek(0)).(object.Boolean); !ok {
		return runtimeError(node.Right, diag.NotBooleanTypeErr)
	}
	return nil
}

func (i *Interpreter) evalBinaryExpression(env *object.Environment, node *ast.BinaryExpression) error {
	if err := i.evalExpression(env, node.Left); err != nil {
		return err
	}
	if err := i.evalExpression(env, node.Right); err != nil {
		return err
	}
	left, right := *i.stack.Peek(1), *i.stack.Peek(0)

	result, err := i.binaryValue(node, left, right)
	if err != nil {
		return err
	}
	i.stack.Shrink(2)
	i.stack.Push(result)
	return nil
}

func isNumeric(v object.Value) bool {
	switch v.(type) {
	case object.Int, object.Double:
		return true
	}
	return false
}

func toDouble(v object.Value) float64 {
	if n, ok := v.(object.Int); ok {
		return float64(n)
	}
	return float64(v.(object.Double))
}

// binaryValue runs while both operands are still on the stack, so a string
// concatenation may allocate safely.
func (i *Interpreter) binaryValue(node *ast.BinaryExpression, left, right object.Value) (object.Value, error) {
	op := node.Operator

	if isNumeric(left) && isNumeric(right) {
		li, lok := left.(object.Int)
		ri, rok := right.(object.Int)
		if lok && rok {
			return evalIntBinary(node, li, ri)
		}
		return evalDoubleBinary(op, toDouble(left), toDouble(right)), nil
	}

	lb, lok := left.(object.Boolean)
	rb, rok := right.(object.Boolean)
	if lok && rok {
		switch op {
		case ast.EQ:
			return object.Boolean(lb == rb), nil
		case ast.NE:
			return object.Boolean(lb != rb), nil
		}
		return nil, runtimeError(node, diag.NotBooleanOperatorErr, diag.Str("operator", op.String()))
	}

	if ls, ok := left.(object.StringRef); ok {
		if op == ast.ADD {
			return i.heap.AllocString(i.heap.StringOf(ls) + i.FormatValue(right)), nil
		}
		if rs, ok := right.(object.StringRef); ok {
			return evalStringBinary(node, i.heap.StringOf(ls), i.heap.StringOf(rs))
		}
	}

	if object.IsNull(left) || object.IsNull(right) {
		bothNull := object.IsNull(left) && object.IsNull(right)
		switch op {
		case ast.EQ:
			return object.Boolean(bothNull), nil
		case ast.NE:
			return object.Boolean(!bothNull), nil
		}
		return nil, runtimeError(node, diag.NotNullOperatorErr, diag.Str("operator", op.String()))
	}

	return nil, runtimeError(node, diag.BadOperandTypeErr, diag.Str("operator", op.String()))
}

func evalIntBinary(node *ast.BinaryExpression, left, right object.Int) (object.Value, error) {
	switch node.Operator {
	case ast.ADD:
		return left + right, nil
	case ast.SUB:
		return left - right, nil
	case ast.MUL:
		return left * right, nil
	case ast.DIV:
		if right == 0 {
			return nil, runtimeError(node, diag.DivisionByZeroErr)
		}
		return left / right, nil
	case ast.MOD:
		if right == 0 {
			return nil, runtimeError(node, diag.DivisionByZeroErr)
		}
		return left % right, nil
	case ast.EQ:
		return object.Boolean(left == right), nil
	case ast.NE:
		return object.Boolean(left != right), nil
	case ast.GT:
		return object.Boolean(left > right), nil
	case ast.GE:
		return object.Boolean(left >= right), nil
	case ast.LT:
		return object.Boolean(left < right), nil
	case ast.LE:
		return object.Boolean(left <= right), nil
	}
	panic(fmt.Sprintf("bad integer operator: %s", node.Operator))
}

func evalDoubleBinary(op ast.Operator, left, right float64) object.Value {
	switch op {
	case ast.ADD:
		return object.Double(left + right)
	case ast.SUB:
		return object.Double(left - right)
	case ast.MUL:
		return object.Double(left * right)
	case ast.DIV:
		return object.Double(left / right)
	case ast.MOD:
		return object.Double(math.Mod(left, right))
	case ast.EQ:
		return object.Boolean(left == right)
	case ast.NE:
		return object.Boolean(left != right)
	case ast.GT:
		return object.Boolean(left > right)
	case ast.GE:
		return object.Boolean(left >= right)
	case ast.LT:
		return object.Boolean(left < right)
	case ast.LE:
		return object.Boolean(left <= right)
	}
	panic(fmt.Sprintf("bad double operator: %s", op))
}

func evalStringBinary(node *ast.BinaryExpression, left, right string) (object.Value, error) {
	switch node.Operator {
	case ast.EQ:
		return object.Boolean(left == right), nil
	case ast.NE:
		return object.Boolean(left != right), nil
	case ast.GT:
		return object.Boolean(left > right), nil
	case ast.GE:
		return object.Boolean(left >= right), nil
	case ast.LT:
		return object.Boolean(left < right), nil
	case ast.LE:
		return object.Boolean(left <= right), nil
	}
	return nil, runtimeError(node, diag.BadOperatorForStringErr, diag.Str("operator", node.Operator.String()))
}

// evalArrayLiteral evaluates the elements onto the stack first, so they are
// rooted while the array is allocated.
func (i *Interpreter) evalArrayLiteral(env *object.Environment, node *ast.ArrayLiteral) error {
	for _, elem := range node.Elements {
		if err := i.evalExpression(env, elem); err != nil {
			return err
		}
	}
	n := len(node.Elements)
	array := i.heap.AllocArray(n)
	for idx, v := range i.stack.Slice(n) {
		i.heap.ArraySet(array, idx, v)
	}
	i.stack.Shrink(n)
	i.stack.Push(array)
	return nil
}
