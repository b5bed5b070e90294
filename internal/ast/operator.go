package ast

import "crowbar/internal/token"

type Operator int

const (
	ADD Operator = iota + 1
	SUB
	MUL
	DIV
	MOD
	EQ
	NE
	GT
	GE
	LT
	LE
	LOGICAL_AND
	LOGICAL_OR
	INCREMENT
	DECREMENT
)

var operatorText = map[Operator]string{
	ADD:         "+",
	SUB:         "-",
	MUL:         "*",
	DIV:         "/",
	MOD:         "%",
	EQ:          "==",
	NE:          "!=",
	GT:          ">",
	GE:          ">=",
	LT:          "<",
	LE:          "<=",
	LOGICAL_AND: "&&",
	LOGICAL_OR:  "||",
	INCREMENT:   "++",
	DECREMENT:   "--",
}

var tokenOperators = map[token.TokenType]Operator{
	token.PLUS:        ADD,
	token.MINUS:       SUB,
	token.ASTERISK:    MUL,
	token.SLASH:       DIV,
	token.PERCENT:     MOD,
	token.EQ:          EQ,
	token.NOT_EQ:      NE,
	token.GT:          GT,
	token.GT_EQ:       GE,
	token.LT:          LT,
	token.LT_EQ:       LE,
	token.LOGICAL_AND: LOGICAL_AND,
	token.LOGICAL_OR:  LOGICAL_OR,
	token.INCR:        INCREMENT,
	token.DECR:        DECREMENT,
}

// String returns the operator as written in source.
func (o Operator) String() string {
	if s, ok := operatorText[o]; ok {
		return s
	}
	return "?"
}

// OperatorFor maps an operator token to its Operator.
func OperatorFor(t token.TokenType) (Operator, bool) {
	op, ok := tokenOperators[t]
	return op, ok
}

// IsComparison reports whether o yields a boolean from two operands.
func (o Operator) IsComparison() bool {
	switch o {
	case EQ, NE, GT, GE, LT, LE:
		return true
	}
	return false
}
