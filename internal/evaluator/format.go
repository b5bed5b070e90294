package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"crowbar/internal/object"
)

// FormatValue renders v the way print and string concatenation show it.
// An array that contains itself is shown as (...) at the point of recursion.
func (i *Interpreter) FormatValue(v object.Value) string {
	var b strings.Builder
	i.writeValue(&b, v, map[object.Ref]bool{})
	return b.String()
}

func (i *Interpreter) writeValue(b *strings.Builder, v object.Value, seen map[object.Ref]bool) {
	switch v := v.(type) {
	case object.Boolean:
		b.WriteString(strconv.FormatBool(bool(v)))
	case object.Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case object.Double:
		fmt.Fprintf(b, "%f", float64(v))
	case object.StringRef:
		b.WriteString(i.heap.StringOf(v))
	case object.ArrayRef:
		if seen[v.Ref] {
			b.WriteString("(...)")
			return
		}
		seen[v.Ref] = true
		b.WriteByte('(')
		for n := 0; n < i.heap.ArrayLen(v); n++ {
			if n > 0 {
				b.WriteString(", ")
			}
			i.writeValue(b, i.heap.ArrayGet(v, n), seen)
		}
		b.WriteByte(')')
		delete(seen, v.Ref)
	case object.NativePointer:
		fmt.Fprintf(b, "(%s:%p)", v.Info.Name, v.Pointer)
	default:
		b.WriteString("null")
	}
}
