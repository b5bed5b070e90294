package lexer

import (
	"crowbar/internal/token"
)

type GeneralTokenizer struct {
	lexer *Lexer
}

func NewGeneralTokenizer(lexer *Lexer) *GeneralTokenizer {
	return &GeneralTokenizer{lexer: lexer}
}

func (g *GeneralTokenizer) NextToken() token.Token {
	var tok token.Token

	g.lexer.skipWhitespace()

	startPosition := g.lexer.position // Record the current position as the start of the token
	line := g.lexer.line

	switch g.lexer.ch {
	case '=':
		tok = g.lexer.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = g.lexer.handleCompoundToken(token.PLUS, '+', token.INCR)
	case '-':
		tok = g.lexer.handleCompoundToken(token.MINUS, '-', token.DECR)
	case '!':
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '=', token.NOT_EQ)
	case '/':
		tok = newToken(token.SLASH, g.lexer.ch, startPosition, line)
	case '*':
		tok = newToken(token.ASTERISK, g.lexer.ch, startPosition, line)
	case '%':
		tok = newToken(token.PERCENT, g.lexer.ch, startPosition, line)
	case '&':
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '&', token.LOGICAL_AND)
	case '|':
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '|', token.LOGICAL_OR)
	case '<':
		tok = g.lexer.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = g.lexer.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case ';':
		tok = newToken(token.SEMICOLON, g.lexer.ch, startPosition, line)
	case ',':
		tok = newToken(token.COMMA, g.lexer.ch, startPosition, line)
	case '.':
		tok = newToken(token.PERIOD, g.lexer.ch, startPosition, line)
	case '{':
		tok = newToken(token.LBRACE, g.lexer.ch, startPosition, line)
	case '}':
		tok = newToken(token.RBRACE, g.lexer.ch, startPosition, line)
	case '(':
		tok = newToken(token.LPAREN, g.lexer.ch, startPosition, line)
	case ')':
		tok = newToken(token.RPAREN, g.lexer.ch, startPosition, line)
	case '[':
		tok = newToken(token.LBRACKET, g.lexer.ch, startPosition, line)
	case ']':
		tok = newToken(token.RBRACKET, g.lexer.ch, startPosition, line)
	case '"':
		g.lexer.readChar() // consume the opening "
		g.lexer.switchMode(NewStringTokenizer(g.lexer, startPosition, line))
		return g.lexer.currentMode.NextToken()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = startPosition
		tok.Line = line
	default:
		if isLetter(g.lexer.ch) {
			tok.Literal = g.lexer.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			tok.Line = line
			return tok
		} else if isDigit(g.lexer.ch) {
			tok.Literal, tok.Type = g.lexer.readNumber()
			tok.Position = startPosition
			tok.Line = line
			return tok
		} else {
			tok = newToken(token.ILLEGAL, g.lexer.ch, startPosition, line)
		}
	}

	g.lexer.readChar()
	return tok
}
