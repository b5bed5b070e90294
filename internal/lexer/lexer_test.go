package lexer

import (
	"crowbar/internal/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNextToken(t *testing.T) {
	input := `function add(x, y) {
    return x + y;
}
# alt comment
a = [1, 2.5, "s"];
a[0]++; b--;
if (a.size() <= 3 && true || false) { print(null); }
elsif (1 != 2) {} else {}
while (x >= 1) { break; continue; }
for (i = 0; i < 10; i = i % 3) { global g; }
x * y / z - w > v;
10 == 10; // comment
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.FUNCTION, "function"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.DOUBLE, "2.5"},
		{token.COMMA, ","},
		{token.STRING, "s"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.INCR, "++"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "b"},
		{token.DECR, "--"},
		{token.SEMICOLON, ";"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.PERIOD, "."},
		{token.IDENT, "size"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LT_EQ, "<="},
		{token.INT, "3"},
		{token.LOGICAL_AND, "&&"},
		{token.TRUE, "true"},
		{token.LOGICAL_OR, "||"},
		{token.FALSE, "false"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "print"},
		{token.LPAREN, "("},
		{token.NULL, "null"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSIF, "elsif"},
		{token.LPAREN, "("},
		{token.INT, "1"},
		{token.NOT_EQ, "!="},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.WHILE, "while"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.GT_EQ, ">="},
		{token.INT, "1"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.BREAK, "break"},
		{token.SEMICOLON, ";"},
		{token.CONTINUE, "continue"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.FOR, "for"},
		{token.LPAREN, "("},
		{token.IDENT, "i"},
		{token.ASSIGN, "="},
		{token.INT, "0"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "i"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "i"},
		{token.ASSIGN, "="},
		{token.IDENT, "i"},
		{token.PERCENT, "%"},
		{token.INT, "3"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.GLOBAL, "global"},
		{token.IDENT, "g"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IDENT, "x"},
		{token.ASTERISK, "*"},
		{token.IDENT, "y"},
		{token.SLASH, "/"},
		{token.IDENT, "z"},
		{token.MINUS, "-"},
		{token.IDENT, "w"},
		{token.GT, ">"},
		{token.IDENT, "v"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.EQ, "=="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextStringToken(t *testing.T) {
	input := `"\n\t\\\"" "" "caf` + "é" + `" "x\qy"`

	want := []token.Token{
		{Type: token.STRING, Literal: "\n\t\\\"", Position: 0, Line: 1},
		{Type: token.STRING, Literal: "", Position: 11, Line: 1},
		{Type: token.STRING, Literal: "café", Position: 14, Line: 1},
		{Type: token.STRING, Literal: `x\qy`, Position: 22, Line: 1},
		{Type: token.EOF, Literal: "", Position: 28, Line: 1},
	}

	if diff := cmp.Diff(want, New(input).Tokens()); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLineNumbers(t *testing.T) {
	input := "a\n# comment\nb\n\"multi\nline\" c"

	var got []int
	for _, tok := range New(input).Tokens() {
		got = append(got, tok.Line)
	}

	want := []int{1, 3, 4, 5, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestIllegalCharacters(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"@", "@"},
		{"!", "!"},
		{"&", "&"},
		{"|", "|"},
		{`"unterminated`, `"`},
		{`"bad escape\`, `"`},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: expected ILLEGAL token, got %q: %q", tt.input, tok.Type, tok.Literal)
			continue
		}
		if tok.Literal != tt.literal {
			t.Errorf("%q: expected literal %q, got %q", tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestNumberFollowedByPeriod(t *testing.T) {
	toks := New("1.size").Tokens()

	var types []token.TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}

	want := []token.TokenType{token.INT, token.PERIOD, token.IDENT, token.EOF}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}
