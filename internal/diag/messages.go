package diag

var compileMessages = map[CompileErrorKind]string{
	ParseErr:                  "syntax error near ($(token))",
	CharacterInvalidErr:       "invalid character ($(bad_char))",
	FunctionMultipleDefineErr: "function name defined more than once ($(name))",
}

var runtimeMessages = map[RuntimeErrorKind]string{
	VariableNotFoundErr:          "variable not found ($(name)).",
	FunctionNotFoundErr:          "function not found ($(name)).",
	ArgumentTooManyErr:           "too many arguments for function ($(name)).",
	ArgumentTooFewErr:            "too few arguments for function ($(name)).",
	NotBooleanTypeErr:            "conditional expression must be of boolean type.",
	MinusOperandTypeErr:          "operand of the minus operator must be a number.",
	BadOperandTypeErr:            "bad operand type for binary operator $(operator).",
	NotBooleanOperatorErr:        "operator $(operator) cannot be applied to boolean values.",
	FopenArgumentTypeErr:         "bad arguments for fopen().",
	FcloseArgumentTypeErr:        "bad arguments for fclose().",
	FgetsArgumentTypeErr:         "bad arguments for fgets().",
	FputsArgumentTypeErr:         "bad arguments for fputs().",
	NotNullOperatorErr:           "null only supports == and != (cannot apply $(operator)).",
	DivisionByZeroErr:            "division by zero.",
	GlobalVariableNotFoundErr:    "global variable $(name) does not exist.",
	GlobalStatementInToplevelErr: "global statement cannot be used outside of a function.",
	BadOperatorForStringErr:      "operator $(operator) cannot be applied to strings.",
	NotLvalueErr:                 "operand is not an lvalue.",
	IndexOperandNotArrayErr:      "left operand of the index operator is not an array.",
	IndexOperandNotIntErr:        "index value is not an integer.",
	ArrayIndexOutOfBoundsErr:     "array index out of bounds. array size: $(size), index: [$(index)]",
	NoSuchMethodErr:              "object has no member named $(method_name).",
	NewArrayArgumentTypeErr:      "new_array() expects integer arguments (array sizes).",
	IncDecOperandTypeErr:         "operand of increment/decrement is not an integer.",
	ArrayResizeArgumentErr:       "resize() of an array expects an integer argument.",
	DBArgumentTypeErr:            "bad arguments for $(name)().",
	DBOperationErr:               "database operation $(name) failed: $(message)",
}
