package graph

import "github.com/MeadowlarkDAW/audio-graph/pkg/porttype"

// Buffer is an abstract storage slot for intermediate values of one port
// type. Index is unique only within Type: two buffers of different types may
// share an index, since the schedule consumer allocates one pool per type.
type Buffer[PT porttype.PortType] struct {
	Index int
	Type  PT
}

// bufAssignment records the buffer acquired for one producing port, plus how
// many of its outgoing edges have not yet been drained by a visited consumer.
type bufAssignment[PT porttype.PortType] struct {
	buf      Buffer[PT]
	refcount int
}

// bufferAllocator is a per-port-type free-list allocator. It is owned by the
// Graph and reused (cleared, not reallocated) across Compile calls.
type bufferAllocator[PT porttype.PortType] struct {
	nextIndex []int
	freeStack [][]int
}

func newBufferAllocator[PT porttype.PortType](numTypes int) *bufferAllocator[PT] {
	return &bufferAllocator[PT]{
		nextIndex: make([]int, numTypes),
		freeStack: make([][]int, numTypes),
	}
}

// acquire pops the free stack for typ if non-empty, else mints a fresh index.
func (a *bufferAllocator[PT]) acquire(typ PT) Buffer[PT] {
	i := typ.Index()
	if n := len(a.freeStack[i]); n > 0 {
		idx := a.freeStack[i][n-1]
		a.freeStack[i] = a.freeStack[i][:n-1]
		return Buffer[PT]{Index: idx, Type: typ}
	}
	idx := a.nextIndex[i]
	a.nextIndex[i]++
	return Buffer[PT]{Index: idx, Type: typ}
}

// release returns buf's index to its type's free stack for future reuse.
func (a *bufferAllocator[PT]) release(buf Buffer[PT]) {
	i := buf.Type.Index()
	a.freeStack[i] = append(a.freeStack[i], buf.Index)
}

// clear resets next-index and free-stack state for every type, in place.
func (a *bufferAllocator[PT]) clear() {
	for i := range a.nextIndex {
		a.nextIndex[i] = 0
		a.freeStack[i] = a.freeStack[i][:0]
	}
}

// totalAcquired returns the total number of distinct buffer indices minted
// across all types during the most recent walk. Used only for diagnostics
// (telemetry span attributes), never for correctness.
func (a *bufferAllocator[PT]) totalAcquired() int {
	total := 0
	for _, n := range a.nextIndex {
		total += n
	}
	return total
}
