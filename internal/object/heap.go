package object

import (
	"fmt"
	"log/slog"
)

const (
	// ObjectHeaderSize is the accounted size of every heap object.
	ObjectHeaderSize = 48
	// ValueSize is the accounted size of one array slot.
	ValueSize = 16

	DefaultHeapThreshold = 256 * 1024
	DefaultHeapIncrement = 256 * 1024
	DefaultArrayChunk    = 256
)

type ObjectKind int

const (
	ARRAY_OBJECT ObjectKind = iota + 1
	STRING_OBJECT
)

func (k ObjectKind) String() string {
	switch k {
	case ARRAY_OBJECT:
		return "array"
	case STRING_OBJECT:
		return "string"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Ref is a stable handle to a heap slot. Gen changes every time the slot is
// freed, so a handle that outlived its object is detected instead of aliasing
// whatever reuses the slot.
type Ref struct {
	Index int
	Gen   uint32
}

// RootScanner reports every root value to mark. It is called once per
// collection.
type RootScanner interface {
	ScanRoots(mark func(Value))
}

type HeapConfig struct {
	Threshold  int // first collection happens once the heap grows past this
	Increment  int // after a collection the threshold becomes size + Increment
	ArrayChunk int // largest single growth step of an array, in slots

	Logger *slog.Logger // collection records; slog.Default() when nil
}

func (c HeapConfig) withDefaults() HeapConfig {
	if c.Threshold <= 0 {
		c.Threshold = DefaultHeapThreshold
	}
	if c.Increment <= 0 {
		c.Increment = DefaultHeapIncrement
	}
	if c.ArrayChunk <= 0 {
		c.ArrayChunk = DefaultArrayChunk
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type heapObject struct {
	kind    ObjectKind
	gen     uint32
	live    bool
	marked  bool
	size    int     // logical array length
	elems   []Value // len(elems) is the allocated capacity
	str     string
	literal bool
}

func (o *heapObject) accountedSize() int {
	switch o.kind {
	case ARRAY_OBJECT:
		return ObjectHeaderSize + ValueSize*len(o.elems)
	case STRING_OBJECT:
		if o.literal {
			return ObjectHeaderSize
		}
		return ObjectHeaderSize + len(o.str) + 1
	}
	return ObjectHeaderSize
}

type HeapStats struct {
	Size        int
	Threshold   int
	Live        int
	Collections int
	LastFreed   int
}

// Heap is a mark and sweep arena for strings and arrays.
type Heap struct {
	cfg     HeapConfig
	roots   RootScanner
	objects []heapObject
	free    []int

	size        int
	threshold   int
	live        int
	collections int
	lastFreed   int
}

func NewHeap(cfg HeapConfig, roots RootScanner) *Heap {
	cfg = cfg.withDefaults()
	return &Heap{
		cfg:       cfg,
		roots:     roots,
		threshold: cfg.Threshold,
	}
}

func (h *Heap) Size() int      { return h.size }
func (h *Heap) Threshold() int { return h.threshold }

// Len returns the number of live objects.
func (h *Heap) Len() int { return h.live }

func (h *Heap) Stats() HeapStats {
	return HeapStats{
		Size:        h.size,
		Threshold:   h.threshold,
		Live:        h.live,
		Collections: h.collections,
		LastFreed:   h.lastFreed,
	}
}

func (h *Heap) checkGC() {
	if h.size > h.threshold {
		h.Collect()
		h.threshold = h.size + h.cfg.Increment
	}
}

func (h *Heap) alloc(o heapObject) Ref {
	h.checkGC()

	var idx int
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
		o.gen = h.objects[idx].gen
	} else {
		idx = len(h.objects)
		o.gen = 1
		h.objects = append(h.objects, heapObject{})
	}
	o.live = true
	h.objects[idx] = o
	h.size += o.accountedSize()
	h.live++

	return Ref{Index: idx, Gen: o.gen}
}

func (h *Heap) index(ref Ref) int {
	if ref.Index < 0 || ref.Index >= len(h.objects) {
		panic(fmt.Sprintf("heap: reference %d out of range", ref.Index))
	}
	o := &h.objects[ref.Index]
	if !o.live || o.gen != ref.Gen {
		panic(fmt.Sprintf("heap: stale reference %d (gen %d)", ref.Index, ref.Gen))
	}
	return ref.Index
}

func (h *Heap) deref(ref Ref) *heapObject {
	return &h.objects[h.index(ref)]
}

func (h *Heap) derefKind(ref Ref, kind ObjectKind) *heapObject {
	o := h.deref(ref)
	if o.kind != kind {
		panic(fmt.Sprintf("heap: reference %d is a %s, not a %s", ref.Index, o.kind, kind))
	}
	return o
}

// Alive reports whether ref still names a live object.
func (h *Heap) Alive(ref Ref) bool {
	if ref.Index < 0 || ref.Index >= len(h.objects) {
		return false
	}
	o := &h.objects[ref.Index]
	return o.live && o.gen == ref.Gen
}

func (h *Heap) Kind(ref Ref) ObjectKind {
	return h.deref(ref).kind
}

// ObjectSize returns the number of bytes ref is accounted for.
func (h *Heap) ObjectSize(ref Ref) int {
	return h.deref(ref).accountedSize()
}

// Collect runs a full mark and sweep and returns the number of freed objects.
func (h *Heap) Collect() int {
	before := h.size

	for i := range h.objects {
		h.objects[i].marked = false
	}
	if h.roots != nil {
		h.roots.ScanRoots(h.mark)
	}

	freed := 0
	for i := range h.objects {
		o := &h.objects[i]
		if !o.live || o.marked {
			continue
		}
		h.size -= o.accountedSize()
		h.release(i)
		freed++
	}

	h.collections++
	h.lastFreed = freed
	h.cfg.Logger.Debug("garbage collection",
		slog.Int("freed", freed),
		slog.Int("live", h.live),
		slog.Int("heap-size-before", before),
		slog.Int("heap-size-after", h.size),
	)
	return freed
}

func (h *Heap) release(i int) {
	h.objects[i] = heapObject{gen: h.objects[i].gen + 1}
	h.free = append(h.free, i)
	h.live--
}

func (h *Heap) mark(v Value) {
	ref, ok := RefOf(v)
	if !ok {
		return
	}

	work := []int{h.index(ref)}
	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]

		o := &h.objects[i]
		if o.marked {
			continue
		}
		o.marked = true

		if o.kind != ARRAY_OBJECT {
			continue
		}
		for _, e := range o.elems[:o.size] {
			if r, ok := RefOf(e); ok {
				work = append(work, h.index(r))
			}
		}
	}
}

// Dispose frees every object regardless of reachability.
func (h *Heap) Dispose() {
	h.objects = nil
	h.free = nil
	h.size = 0
	h.live = 0
	h.threshold = h.cfg.Threshold
}

// Strings

// AllocString allocates a computed string.
func (h *Heap) AllocString(s string) StringRef {
	return StringRef{Ref: h.alloc(heapObject{kind: STRING_OBJECT, str: s})}
}

// AllocLiteral allocates a string whose text comes from the program source.
// Only its header is accounted.
func (h *Heap) AllocLiteral(s string) StringRef {
	return StringRef{Ref: h.alloc(heapObject{kind: STRING_OBJECT, str: s, literal: true})}
}

func (h *Heap) StringOf(s StringRef) string {
	return h.derefKind(s.Ref, STRING_OBJECT).str
}

func (h *Heap) IsLiteral(s StringRef) bool {
	return h.derefKind(s.Ref, STRING_OBJECT).literal
}

// Arrays

// AllocArray allocates an array of size Null elements.
func (h *Heap) AllocArray(size int) ArrayRef {
	elems := make([]Value, size)
	for i := range elems {
		elems[i] = Null{}
	}
	return ArrayRef{Ref: h.alloc(heapObject{kind: ARRAY_OBJECT, size: size, elems: elems})}
}

func (h *Heap) ArrayLen(a ArrayRef) int {
	return h.derefKind(a.Ref, ARRAY_OBJECT).size
}

// ArrayCap returns the number of allocated slots.
func (h *Heap) ArrayCap(a ArrayRef) int {
	return len(h.derefKind(a.Ref, ARRAY_OBJECT).elems)
}

func (h *Heap) ArrayGet(a ArrayRef, i int) Value {
	o := h.derefKind(a.Ref, ARRAY_OBJECT)
	return o.elems[:o.size][i]
}

func (h *Heap) ArraySet(a ArrayRef, i int, v Value) {
	o := h.derefKind(a.Ref, ARRAY_OBJECT)
	o.elems[:o.size][i] = v
}

// ArraySlot returns the storage of element i. The pointer is only valid
// until the array grows.
func (h *Heap) ArraySlot(a ArrayRef, i int) *Value {
	o := h.derefKind(a.Ref, ARRAY_OBJECT)
	return &o.elems[:o.size][i]
}

// ArrayAdd appends v, growing the storage when full.
func (h *Heap) ArrayAdd(a ArrayRef, v Value) {
	h.checkGC()

	o := h.derefKind(a.Ref, ARRAY_OBJECT)
	if o.size+1 > len(o.elems) {
		alloc := len(o.elems)
		newAlloc := alloc * 2
		if newAlloc == 0 || newAlloc-alloc > h.cfg.ArrayChunk {
			newAlloc = alloc + h.cfg.ArrayChunk
		}
		h.reallocate(o, newAlloc)
	}
	o.elems[o.size] = v
	o.size++
}

// ArrayResize sets the logical length to n, filling new slots with Null.
// Shrinking only gives storage back once the slack exceeds one chunk.
func (h *Heap) ArrayResize(a ArrayRef, n int) {
	h.checkGC()

	o := h.derefKind(a.Ref, ARRAY_OBJECT)
	alloc := len(o.elems)
	switch {
	case n > alloc:
		newAlloc := alloc * 2
		if newAlloc-alloc > h.cfg.ArrayChunk {
			newAlloc = alloc + h.cfg.ArrayChunk
		}
		if newAlloc < n {
			newAlloc = n + h.cfg.ArrayChunk
		}
		h.reallocate(o, newAlloc)
	case alloc-n > h.cfg.ArrayChunk:
		h.reallocate(o, n)
	}

	for i := o.size; i < n; i++ {
		o.elems[i] = Null{}
	}
	for i := n; i < o.size; i++ {
		o.elems[i] = nil
	}
	o.size = n
}

func (h *Heap) reallocate(o *heapObject, newAlloc int) {
	elems := make([]Value, newAlloc)
	copy(elems, o.elems[:min(o.size, newAlloc)])
	h.size += ValueSize * (newAlloc - len(o.elems))
	o.elems = elems
}
