package object

// Variable is a named cell holding one value.
type Variable struct {
	Name  string
	Value Value
}

// VariableList is searched newest first, so a later binding shadows an
// earlier one with the same name.
type VariableList struct {
	vars []*Variable
}

func (l *VariableList) Search(name string) *Variable {
	for i := len(l.vars) - 1; i >= 0; i-- {
		if l.vars[i].Name == name {
			return l.vars[i]
		}
	}
	return nil
}

func (l *VariableList) Add(name string, v Value) *Variable {
	variable := &Variable{Name: name, Value: v}
	l.vars = append(l.vars, variable)
	return variable
}

func (l *VariableList) Len() int { return len(l.vars) }

// Each calls fn for every variable, oldest first.
func (l *VariableList) Each(fn func(*Variable)) {
	for _, v := range l.vars {
		fn(v)
	}
}

// Environment is the scope of one function call: its locals, the globals it
// imported with a global statement, and heap objects a native function
// allocated that must survive until the call returns.
type Environment struct {
	Locals     VariableList
	globalRefs []*Variable
	nativeRefs []Value
}

func NewEnvironment() *Environment {
	return &Environment{}
}

func (e *Environment) SearchLocal(name string) *Variable {
	return e.Locals.Search(name)
}

func (e *Environment) AddLocal(name string, v Value) *Variable {
	return e.Locals.Add(name, v)
}

// SearchGlobalRef returns the imported global cell for name.
func (e *Environment) SearchGlobalRef(name string) *Variable {
	for i := len(e.globalRefs) - 1; i >= 0; i-- {
		if e.globalRefs[i].Name == name {
			return e.globalRefs[i]
		}
	}
	return nil
}

// ImportGlobal makes the global cell visible in this environment. Importing
// the same name twice is a no-op.
func (e *Environment) ImportGlobal(global *Variable) {
	if e.SearchGlobalRef(global.Name) != nil {
		return
	}
	e.globalRefs = append(e.globalRefs, global)
}

// AddNativeRef keeps the object v refers to alive until the environment is
// disposed.
func (e *Environment) AddNativeRef(v Value) {
	if _, ok := RefOf(v); ok {
		e.nativeRefs = append(e.nativeRefs, v)
	}
}

// NativeRefs returns the number of native temporaries held.
func (e *Environment) NativeRefs() int { return len(e.nativeRefs) }

// ScanRoots reports the locals and native temporaries. Imported globals
// are reached through the global list.
func (e *Environment) ScanRoots(mark func(Value)) {
	e.Locals.Each(func(v *Variable) { mark(v.Value) })
	for _, v := range e.nativeRefs {
		mark(v)
	}
}

// Dispose drops everything the environment holds.
func (e *Environment) Dispose() {
	e.Locals = VariableList{}
	e.globalRefs = nil
	e.nativeRefs = nil
}
