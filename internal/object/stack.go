package object

const DefaultStackChunk = 256

// Stack is the operand stack shared by every evaluation in an interpreter.
// Each slot below the stack pointer is a GC root.
type Stack struct {
	values []Value
	sp     int
	chunk  int
}

func NewStack(chunk int) *Stack {
	if chunk <= 0 {
		chunk = DefaultStackChunk
	}
	return &Stack{values: make([]Value, chunk), chunk: chunk}
}

func (s *Stack) Len() int { return s.sp }

func (s *Stack) Push(v Value) {
	if s.sp == len(s.values) {
		grown := make([]Value, len(s.values)+s.chunk)
		copy(grown, s.values)
		s.values = grown
	}
	s.values[s.sp] = v
	s.sp++
}

// Pop removes the top slot. Popping an empty stack is a bug in the caller.
func (s *Stack) Pop() Value {
	if s.sp == 0 {
		panic("stack: pop on empty stack")
	}
	s.sp--
	v := s.values[s.sp]
	s.values[s.sp] = nil
	return v
}

// Peek returns the slot depth positions below the top; Peek(0) is the top.
func (s *Stack) Peek(depth int) *Value {
	if depth < 0 || depth >= s.sp {
		panic("stack: peek beyond stack pointer")
	}
	return &s.values[s.sp-1-depth]
}

// Shrink drops the top n slots.
func (s *Stack) Shrink(n int) {
	if n > s.sp {
		panic("stack: shrink beyond stack pointer")
	}
	for i := s.sp - n; i < s.sp; i++ {
		s.values[i] = nil
	}
	s.sp -= n
}

// Slice returns the top n slots, oldest first. It aliases the stack.
func (s *Stack) Slice(n int) []Value {
	if n > s.sp {
		panic("stack: slice beyond stack pointer")
	}
	return s.values[s.sp-n : s.sp : s.sp]
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.Shrink(s.sp)
}

// Each calls fn for every live slot, bottom first.
func (s *Stack) Each(fn func(Value)) {
	for _, v := range s.values[:s.sp] {
		fn(v)
	}
}
