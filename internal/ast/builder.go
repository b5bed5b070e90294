package ast

import (
	"crowbar/internal/diag"
)

// Builder collects the function definitions and top-level statements of one
// compilation unit. It is owned by a single parser run; nothing about it is
// shared between interpreters.
type Builder struct {
	functions  []*FunctionDefinition
	statements []Statement
	defined    map[string]struct{}
}

// NewBuilder returns a builder that treats the given names as already
// defined, so redefinitions of them are rejected too.
func NewBuilder(defined ...string) *Builder {
	b := &Builder{defined: make(map[string]struct{}, len(defined))}
	for _, name := range defined {
		b.defined[name] = struct{}{}
	}
	return b
}

// DefineFunction appends fd, failing when the name is already taken.
func (b *Builder) DefineFunction(fd *FunctionDefinition) error {
	if _, ok := b.defined[fd.Name]; ok {
		return diag.NewCompileError(diag.FunctionMultipleDefineErr, fd.Line(), diag.Str("name", fd.Name))
	}
	b.defined[fd.Name] = struct{}{}
	b.functions = append(b.functions, fd)
	return nil
}

func (b *Builder) AddStatement(s Statement) {
	b.statements = append(b.statements, s)
}

func (b *Builder) Program() *Program {
	return &Program{Functions: b.functions, Statements: b.statements}
}
