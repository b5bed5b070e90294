package lexer

import (
	"crowbar/internal/token"
	"strings"
)

type StringTokenizer struct {
	lexer         *Lexer
	startPosition int
	line          int
}

func NewStringTokenizer(lexer *Lexer, startPosition, line int) *StringTokenizer {
	return &StringTokenizer{lexer: lexer, startPosition: startPosition, line: line}
}

// NextToken reads a string body; the opening `"` has already been consumed.
func (s *StringTokenizer) NextToken() token.Token {
	var result strings.Builder

	// whatever happens, the next token is read in general mode
	defer s.lexer.switchMode(NewGeneralTokenizer(s.lexer))

	for {
		if s.lexer.ch == 0 {
			return newToken(token.ILLEGAL, '"', s.startPosition, s.line)
		}

		if s.lexer.ch == '"' {
			s.lexer.readChar() // Consume the closing `"`
			break
		}

		if s.lexer.ch == '\\' {
			s.lexer.readChar() // Move to the escaped character
			switch s.lexer.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			case 0:
				return newToken(token.ILLEGAL, '"', s.startPosition, s.line)
			default:
				result.WriteRune('\\')
				result.WriteRune(s.lexer.ch)
			}
		} else {
			result.WriteRune(s.lexer.ch)
		}

		s.lexer.readChar()
	}

	return token.Token{
		Type:     token.STRING,
		Literal:  result.String(),
		Position: s.startPosition,
		Line:     s.line,
	}
}
