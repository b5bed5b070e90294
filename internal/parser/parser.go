package parser

import (
	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/lexer"
	"crowbar/internal/token"
	"errors"
	"strconv"
)

const (
	_           int = iota
	LOWEST          // grouping, arguments
	ASSIGN          // =
	LOGICAL_OR      // ||
	LOGICAL_AND     // &&
	EQUALS          // == !=
	COMPARISON      // > or <
	SUM             // +
	PRODUCT         // *
	PREFIX          // -X
	POSTFIX         // list[index], a.size(), i++
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:      ASSIGN,
	token.LOGICAL_OR:  LOGICAL_OR,
	token.LOGICAL_AND: LOGICAL_AND,
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.SLASH:       PRODUCT,
	token.ASTERISK:    PRODUCT,
	token.PERCENT:     PRODUCT,
	token.PERIOD:      POSTFIX,
	token.LBRACKET:    POSTFIX,
	token.INCR:        POSTFIX,
	token.DECR:        POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokenizer lexer.Tokenizer
	src       string // source code here
	builder   *ast.Builder
	errors    []error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// Parse compiles src into a program. Names in defined are treated as
// existing functions, so redefining one of them is a compile error.
func Parse(src string, defined ...string) (*ast.Program, error) {
	p := New(lexer.New(src), src, ast.NewBuilder(defined...))
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

func New(l lexer.Tokenizer, source string, builder *ast.Builder) *Parser {
	p := &Parser{
		tokenizer: l,
		src:       source,
		builder:   builder,
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.DOUBLE, p.parseDoubleLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.MINUS, p.parseMinusExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseBinaryExpression)
	p.registerInfix(token.MINUS, p.parseBinaryExpression)
	p.registerInfix(token.SLASH, p.parseBinaryExpression)
	p.registerInfix(token.ASTERISK, p.parseBinaryExpression)
	p.registerInfix(token.PERCENT, p.parseBinaryExpression)
	p.registerInfix(token.EQ, p.parseBinaryExpression)
	p.registerInfix(token.NOT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.LOGICAL_AND, p.parseBinaryExpression)
	p.registerInfix(token.LOGICAL_OR, p.parseBinaryExpression)
	p.registerInfix(token.LT, p.parseBinaryExpression)
	p.registerInfix(token.LT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.GT, p.parseBinaryExpression)
	p.registerInfix(token.GT_EQ, p.parseBinaryExpression)

	p.registerInfix(token.ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.PERIOD, p.parseMethodCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.INCR, p.parseIncDecExpression)
	p.registerInfix(token.DECR, p.parseIncDecExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.tokenizer.NextToken()
	if p.peekToken.Type == token.ILLEGAL {
		p.errors = append(p.errors, diag.NewCompileError(
			diag.CharacterInvalidErr, p.peekToken.Line, diag.Str("bad_char", p.peekToken.Literal)))
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// syntaxError records a parse error near tok. Illegal tokens were already
// reported when they were read.
func (p *Parser) syntaxError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		return
	}
	literal := tok.Literal
	if tok.Type == token.EOF {
		literal = "EOF"
	}
	p.errors = append(p.errors, diag.NewCompileError(diag.ParseErr, tok.Line, diag.Str("token", literal)))
}

func (p *Parser) peekError() {
	p.syntaxError(p.peekToken)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError()
	return false
}

func (p *Parser) Errors() []error {
	return p.errors
}

// Err joins every recorded compile error, or returns nil.
func (p *Parser) Err() error {
	return errors.Join(p.errors...)
}

func (p *Parser) ParseProgram() *ast.Program {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.FUNCTION) {
			if fd := p.parseFunctionDefinition(); fd != nil {
				if err := p.builder.DefineFunction(fd); err != nil {
					p.errors = append(p.errors, err)
				}
			} else {
				p.synchronize()
			}
		} else if stmt := p.parseStatement(); stmt != nil {
			p.builder.AddStatement(stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	return p.builder.Program()
}

// synchronize skips to the end of the broken statement.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parseFunctionDefinition() *ast.FunctionDefinition {
	fd := &ast.FunctionDefinition{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fd.Name = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fd.Parameters = params

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	fd.Body = p.parseBlock()
	if fd.Body == nil {
		return nil
	}

	return fd
}

func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	var identifiers []*ast.Identifier

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers, true
	}

	if !p.expectPeek(token.IDENT) {
		return nil, false
	}
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return identifiers, true
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.GLOBAL:
		return p.parseGlobalStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		stmt := &ast.BreakStatement{Token: p.curToken}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt
	case token.CONTINUE:
		stmt := &ast.ContinueStatement{Token: p.curToken}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseGlobalStatement() ast.Statement {
	stmt := &ast.GlobalStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Names = append(stmt.Names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Names = append(stmt.Names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return stmt
}

// parseCondition reads `( expr )` and leaves curToken on the ')'.
func (p *Parser) parseCondition() ast.Expression {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return cond
}

// parseBodyBlock expects the next token to open a block and parses it.
func (p *Parser) parseBodyBlock() *ast.Block {
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	return p.parseBlock()
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if stmt.Condition = p.parseCondition(); stmt.Condition == nil {
		return nil
	}
	if stmt.Then = p.parseBodyBlock(); stmt.Then == nil {
		return nil
	}

	for p.peekTokenIs(token.ELSIF) {
		p.nextToken()
		elsif := &ast.Elsif{Token: p.curToken}
		if elsif.Condition = p.parseCondition(); elsif.Condition == nil {
			return nil
		}
		if elsif.Block = p.parseBodyBlock(); elsif.Block == nil {
			return nil
		}
		stmt.Elsifs = append(stmt.Elsifs, elsif)
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if stmt.Else = p.parseBodyBlock(); stmt.Else == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if stmt.Condition = p.parseCondition(); stmt.Condition == nil {
		return nil
	}
	if stmt.Body = p.parseBodyBlock(); stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	clauses := [3]ast.Expression{}
	terminators := [3]token.TokenType{token.SEMICOLON, token.SEMICOLON, token.RPAREN}
	for i, end := range terminators {
		if !p.peekTokenIs(end) {
			p.nextToken()
			if clauses[i] = p.parseExpression(LOWEST); clauses[i] == nil {
				return nil
			}
		}
		if !p.expectPeek(end) {
			return nil
		}
	}
	stmt.Init, stmt.Condition, stmt.Post = clauses[0], clauses[1], clauses[2]

	if stmt.Body = p.parseBodyBlock(); stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}

	p.nextToken()
	if stmt.ReturnValue = p.parseExpression(LOWEST); stmt.ReturnValue == nil {
		return nil
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	if stmt.Expression = p.parseExpression(LOWEST); stmt.Expression == nil {
		return nil
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return stmt
}

// parseBlock parses statements up to the matching '}'; curToken is the '{'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.syntaxError(p.curToken)
			return nil
		}
		if p.curTokenIs(token.FUNCTION) {
			// function definitions are only allowed at the top level
			p.syntaxError(p.curToken)
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.syntaxError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		if leftExp = infix(leftExp); leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(token.LPAREN) {
		call := &ast.FunctionCallExpression{Token: p.curToken, Name: p.curToken.Literal}
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		call.Arguments = args
		return call
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.syntaxError(p.curToken)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseDoubleLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.syntaxError(p.curToken)
		return nil
	}
	return &ast.DoubleLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseMinusExpression() ast.Expression {
	expression := &ast.MinusExpression{Token: p.curToken}

	p.nextToken()
	if expression.Operand = p.parseExpression(PREFIX); expression.Operand == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	op, _ := ast.OperatorFor(p.curToken.Type)
	expression := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: op,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignExpression is right-associative: a = b = c is a = (b = c).
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	expression := &ast.AssignExpression{Token: p.curToken, Left: left}

	precedence := p.curPrecedence()
	p.nextToken()
	if expression.Operand = p.parseExpression(precedence - 1); expression.Operand == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseMethodCallExpression(receiver ast.Expression) ast.Expression {
	exp := &ast.MethodCallExpression{Token: p.curToken, Receiver: receiver}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Method = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args

	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Array: left}

	p.nextToken()
	if expr.Index = p.parseExpression(LOWEST); expr.Index == nil {
		return nil
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return expr
}

func (p *Parser) parseIncDecExpression(operand ast.Expression) ast.Expression {
	op, _ := ast.OperatorFor(p.curToken.Type)
	return &ast.IncDecExpression{Token: p.curToken, Operator: op, Operand: operand}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}

	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements

	return array
}

// parseExpressionList reads comma separated expressions up to end; a
// trailing comma is accepted. curToken is the opening delimiter.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	for {
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		list = append(list, exp)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}
