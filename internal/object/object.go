package object

import "fmt"

type ValueType int

const (
	BOOLEAN_VALUE ValueType = iota + 1
	INT_VALUE
	DOUBLE_VALUE
	STRING_VALUE
	ARRAY_VALUE
	NATIVE_POINTER_VALUE
	NULL_VALUE
)

var valueTypeNames = map[ValueType]string{
	BOOLEAN_VALUE:        "boolean",
	INT_VALUE:            "int",
	DOUBLE_VALUE:         "double",
	STRING_VALUE:         "string",
	ARRAY_VALUE:          "array",
	NATIVE_POINTER_VALUE: "native_pointer",
	NULL_VALUE:           "null",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Value is one of Boolean, Int, Double, StringRef, ArrayRef, NativePointer
// or Null. Copying a Value copies the handle, never the heap object behind it.
type Value interface {
	Type() ValueType
	value()
}

type Boolean bool

func (Boolean) Type() ValueType { return BOOLEAN_VALUE }
func (Boolean) value()          {}

type Int int64

func (Int) Type() ValueType { return INT_VALUE }
func (Int) value()          {}

type Double float64

func (Double) Type() ValueType { return DOUBLE_VALUE }
func (Double) value()          {}

// StringRef points at a string object on the heap.
type StringRef struct {
	Ref Ref
}

func (StringRef) Type() ValueType { return STRING_VALUE }
func (StringRef) value()          {}

// ArrayRef points at an array object on the heap.
type ArrayRef struct {
	Ref Ref
}

func (ArrayRef) Type() ValueType { return ARRAY_VALUE }
func (ArrayRef) value()          {}

// NativePointerInfo names the kind of host resource a NativePointer wraps.
type NativePointerInfo struct {
	Name string
}

// NativePointer carries a host resource (an open file, a database handle)
// through the language untouched.
type NativePointer struct {
	Info    *NativePointerInfo
	Pointer any
}

func (NativePointer) Type() ValueType { return NATIVE_POINTER_VALUE }
func (NativePointer) value()          {}

// Is reports whether the pointer was created with the given info.
func (np NativePointer) Is(info *NativePointerInfo) bool {
	return np.Info == info
}

type Null struct{}

func (Null) Type() ValueType { return NULL_VALUE }
func (Null) value()          {}

// RefOf returns the heap handle held by v, if any.
func RefOf(v Value) (Ref, bool) {
	switch x := v.(type) {
	case StringRef:
		return x.Ref, true
	case ArrayRef:
		return x.Ref, true
	}
	return Ref{}, false
}

// IsNull treats a missing value as null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}
