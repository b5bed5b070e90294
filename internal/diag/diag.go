// Package diag holds the compile-time and runtime error kinds of the
// interpreter together with the message catalog used to render them.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Arg is a named argument substituted into a message template as $(Name).
type Arg struct {
	Name  string
	Value any
}

func Str(name, value string) Arg   { return Arg{Name: name, Value: value} }
func Int(name string, v int64) Arg { return Arg{Name: name, Value: v} }

type Args []Arg

// Get returns the value of the named argument.
func (a Args) Get(name string) (any, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

type CompileErrorKind int

const (
	ParseErr CompileErrorKind = iota + 1
	CharacterInvalidErr
	FunctionMultipleDefineErr
)

var compileErrorNames = map[CompileErrorKind]string{
	ParseErr:                  "PARSE_ERR",
	CharacterInvalidErr:       "CHARACTER_INVALID_ERR",
	FunctionMultipleDefineErr: "FUNCTION_MULTIPLE_DEFINE_ERR",
}

func (k CompileErrorKind) String() string {
	if name, ok := compileErrorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CompileErrorKind(%d)", int(k))
}

type RuntimeErrorKind int

const (
	VariableNotFoundErr RuntimeErrorKind = iota + 1
	FunctionNotFoundErr
	ArgumentTooManyErr
	ArgumentTooFewErr
	NotBooleanTypeErr
	MinusOperandTypeErr
	BadOperandTypeErr
	NotBooleanOperatorErr
	FopenArgumentTypeErr
	FcloseArgumentTypeErr
	FgetsArgumentTypeErr
	FputsArgumentTypeErr
	NotNullOperatorErr
	DivisionByZeroErr
	GlobalVariableNotFoundErr
	GlobalStatementInToplevelErr
	BadOperatorForStringErr
	NotLvalueErr
	IndexOperandNotArrayErr
	IndexOperandNotIntErr
	ArrayIndexOutOfBoundsErr
	NoSuchMethodErr
	NewArrayArgumentTypeErr
	IncDecOperandTypeErr
	ArrayResizeArgumentErr
	DBArgumentTypeErr
	DBOperationErr
)

var runtimeErrorNames = map[RuntimeErrorKind]string{
	VariableNotFoundErr:          "VARIABLE_NOT_FOUND_ERR",
	FunctionNotFoundErr:          "FUNCTION_NOT_FOUND_ERR",
	ArgumentTooManyErr:           "ARGUMENT_TOO_MANY_ERR",
	ArgumentTooFewErr:            "ARGUMENT_TOO_FEW_ERR",
	NotBooleanTypeErr:            "NOT_BOOLEAN_TYPE_ERR",
	MinusOperandTypeErr:          "MINUS_OPERAND_TYPE_ERR",
	BadOperandTypeErr:            "BAD_OPERAND_TYPE_ERR",
	NotBooleanOperatorErr:        "NOT_BOOLEAN_OPERATOR_ERR",
	FopenArgumentTypeErr:         "FOPEN_ARGUMENT_TYPE_ERR",
	FcloseArgumentTypeErr:        "FCLOSE_ARGUMENT_TYPE_ERR",
	FgetsArgumentTypeErr:         "FGETS_ARGUMENT_TYPE_ERR",
	FputsArgumentTypeErr:         "FPUTS_ARGUMENT_TYPE_ERR",
	NotNullOperatorErr:           "NOT_NULL_OPERATOR_ERR",
	DivisionByZeroErr:            "DIVISION_BY_ZERO_ERR",
	GlobalVariableNotFoundErr:    "GLOBAL_VARIABLE_NOT_FOUND_ERR",
	GlobalStatementInToplevelErr: "GLOBAL_STATEMENT_IN_TOPLEVEL_ERR",
	BadOperatorForStringErr:      "BAD_OPERATOR_FOR_STRING_ERR",
	NotLvalueErr:                 "NOT_LVALUE_ERR",
	IndexOperandNotArrayErr:      "INDEX_OPERAND_NOT_ARRAY_ERR",
	IndexOperandNotIntErr:        "INDEX_OPERAND_NOT_INT_ERR",
	ArrayIndexOutOfBoundsErr:     "ARRAY_INDEX_OUT_OF_BOUNDS_ERR",
	NoSuchMethodErr:              "NO_SUCH_METHOD_ERR",
	NewArrayArgumentTypeErr:      "NEW_ARRAY_ARGUMENT_TYPE_ERR",
	IncDecOperandTypeErr:         "INC_DEC_OPERAND_TYPE_ERR",
	ArrayResizeArgumentErr:       "ARRAY_RESIZE_ARGUMENT_ERR",
	DBArgumentTypeErr:            "DB_ARGUMENT_TYPE_ERR",
	DBOperationErr:               "DB_OPERATION_ERR",
}

func (k RuntimeErrorKind) String() string {
	if name, ok := runtimeErrorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RuntimeErrorKind(%d)", int(k))
}

// CompileError is raised while building the AST.
type CompileError struct {
	Kind CompileErrorKind
	Line int
	Args Args
}

func NewCompileError(kind CompileErrorKind, line int, args ...Arg) *CompileError {
	return &CompileError{Kind: kind, Line: line, Args: args}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[%3d] %s", e.Line, format(compileMessages[e.Kind], e.Args))
}

// RuntimeError aborts the running program.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Line int
	Args Args
}

func NewRuntimeError(kind RuntimeErrorKind, line int, args ...Arg) *RuntimeError {
	return &RuntimeError{Kind: kind, Line: line, Args: args}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[%3d] %s", e.Line, format(runtimeMessages[e.Kind], e.Args))
}

// IsRuntime reports whether err carries a runtime error of the given kind.
func IsRuntime(err error, kind RuntimeErrorKind) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Kind == kind
}

// IsCompile reports whether err carries a compile error of the given kind.
// Joined errors are searched too.
func IsCompile(err error, kind CompileErrorKind) bool {
	switch e := err.(type) {
	case *CompileError:
		return e.Kind == kind
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if IsCompile(inner, kind) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return IsCompile(e.Unwrap(), kind)
	}
	return false
}

// format replaces every $(name) in the template with the matching argument.
// Unknown names are left in place.
func format(template string, args Args) string {
	if template == "" {
		template = "unknown error"
	}
	var out strings.Builder
	for {
		start := strings.Index(template, "$(")
		if start < 0 {
			out.WriteString(template)
			return out.String()
		}
		end := strings.IndexByte(template[start:], ')')
		if end < 0 {
			out.WriteString(template)
			return out.String()
		}
		end += start

		out.WriteString(template[:start])
		name := template[start+2 : end]
		if v, ok := args.Get(name); ok {
			fmt.Fprint(&out, v)
		} else {
			out.WriteString(template[start : end+1])
		}
		template = template[end+1:]
	}
}

// LineOf returns the source line of the first compile or runtime error
// found in err.
func LineOf(err error) (int, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Line, true
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Line, true
	}
	return 0, false
}
