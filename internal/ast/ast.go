package ast

import (
	"bytes"
	"crowbar/internal/token"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
	Line() int
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Functions  []*FunctionDefinition
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Line() int { return 1 }

func (p *Program) String() string {
	var out bytes.Buffer

	for _, f := range p.Functions {
		out.WriteString(f.String())
	}
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

type FunctionDefinition struct {
	Token      token.Token // the 'function' token
	Name       string
	Parameters []*Identifier
	Body       *Block
}

func (fd *FunctionDefinition) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDefinition) Line() int            { return fd.Token.Line }
func (fd *FunctionDefinition) String() string {
	var out bytes.Buffer

	params := make([]string, len(fd.Parameters))
	for i, p := range fd.Parameters {
		params[i] = p.String()
	}

	out.WriteString("function ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fd.Body.String())

	return out.String()
}

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Line() int            { return es.Token.Line }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ";"
}

type GlobalStatement struct {
	Token token.Token // the 'global' token
	Names []*Identifier
}

func (gs *GlobalStatement) statementNode()       {}
func (gs *GlobalStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GlobalStatement) Line() int            { return gs.Token.Line }
func (gs *GlobalStatement) String() string {
	names := make([]string, len(gs.Names))
	for i, n := range gs.Names {
		names[i] = n.String()
	}
	return "global " + strings.Join(names, ", ") + ";"
}

type Elsif struct {
	Token     token.Token // the 'elsif' token
	Condition Expression
	Block     *Block
}

func (e *Elsif) String() string {
	return "elsif (" + e.Condition.String() + ") " + e.Block.String()
}

type IfStatement struct {
	Token     token.Token // the 'if' token
	Condition Expression
	Then      *Block
	Elsifs    []*Elsif
	Else      *Block
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Line() int            { return is.Token.Line }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Then.String())
	for _, e := range is.Elsifs {
		out.WriteString(" ")
		out.WriteString(e.String())
	}
	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}

	return out.String()
}

type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      *Block
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Line() int            { return ws.Token.Line }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement has three optional clauses; a missing condition loops forever.
type ForStatement struct {
	Token     token.Token // the 'for' token
	Init      Expression
	Condition Expression
	Post      Expression
	Body      *Block
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Line() int            { return fs.Token.Line }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	out.WriteString("for (")
	if fs.Init != nil {
		out.WriteString(fs.Init.String())
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Post != nil {
		out.WriteString(fs.Post.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Line() int            { return rs.Token.Line }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue != nil {
		return "return " + rs.ReturnValue.String() + ";"
	}
	return "return;"
}

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Line() int            { return bs.Token.Line }
func (bs *BreakStatement) String() string       { return "break;" }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Line() int            { return cs.Token.Line }
func (cs *ContinueStatement) String() string       { return "continue;" }

type Block struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) Line() int            { return b.Token.Line }
func (b *Block) String() string {
	var out bytes.Buffer

	out.WriteString("{")
	for _, s := range b.Statements {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(" }")

	return out.String()
}

// Expressions

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Line() int            { return i.Token.Line }
func (i *Identifier) String() string       { return i.Value }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) Line() int            { return b.Token.Line }
func (b *BooleanLiteral) String() string       { return strconv.FormatBool(b.Value) }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Line() int            { return il.Token.Line }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

type DoubleLiteral struct {
	Token token.Token
	Value float64
}

func (dl *DoubleLiteral) expressionNode()      {}
func (dl *DoubleLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DoubleLiteral) Line() int            { return dl.Token.Line }
func (dl *DoubleLiteral) String() string {
	s := strconv.FormatFloat(dl.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Line() int            { return sl.Token.Line }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) Line() int            { return n.Token.Line }
func (n *NullLiteral) String() string       { return "null" }

// AssignExpression stores Operand into the lvalue Left.
type AssignExpression struct {
	Token   token.Token // the '=' token
	Left    Expression
	Operand Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) Line() int            { return ae.Token.Line }
func (ae *AssignExpression) String() string {
	return "(" + ae.Left.String() + " = " + ae.Operand.String() + ")"
}

type BinaryExpression struct {
	Token    token.Token // the operator token
	Operator Operator
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Line() int            { return be.Token.Line }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator.String() + " " + be.Right.String() + ")"
}

type MinusExpression struct {
	Token   token.Token // the '-' token
	Operand Expression
}

func (me *MinusExpression) expressionNode()      {}
func (me *MinusExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MinusExpression) Line() int            { return me.Token.Line }
func (me *MinusExpression) String() string       { return "(-" + me.Operand.String() + ")" }

type FunctionCallExpression struct {
	Token     token.Token // the function name token
	Name      string
	Arguments []Expression
}

func (fc *FunctionCallExpression) expressionNode()      {}
func (fc *FunctionCallExpression) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCallExpression) Line() int            { return fc.Token.Line }
func (fc *FunctionCallExpression) String() string {
	return fc.Name + "(" + joinExpressions(fc.Arguments) + ")"
}

type MethodCallExpression struct {
	Token     token.Token // the '.' token
	Receiver  Expression
	Method    string
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()      {}
func (mc *MethodCallExpression) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCallExpression) Line() int            { return mc.Token.Line }
func (mc *MethodCallExpression) String() string {
	return mc.Receiver.String() + "." + mc.Method + "(" + joinExpressions(mc.Arguments) + ")"
}

type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Line() int            { return al.Token.Line }
func (al *ArrayLiteral) String() string       { return "[" + joinExpressions(al.Elements) + "]" }

type IndexExpression struct {
	Token token.Token // the '[' token
	Array Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Line() int            { return ie.Token.Line }
func (ie *IndexExpression) String() string {
	return "(" + ie.Array.String() + "[" + ie.Index.String() + "])"
}

// IncDecExpression is a postfix ++ or --; it evaluates to the value before the update.
type IncDecExpression struct {
	Token    token.Token // the '++' or '--' token
	Operator Operator
	Operand  Expression
}

func (ide *IncDecExpression) expressionNode()      {}
func (ide *IncDecExpression) TokenLiteral() string { return ide.Token.Literal }
func (ide *IncDecExpression) Line() int            { return ide.Token.Line }
func (ide *IncDecExpression) String() string {
	return "(" + ide.Operand.String() + ide.Operator.String() + ")"
}

func joinExpressions(list []Expression) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
