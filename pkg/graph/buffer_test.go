package graph

import "testing"

func TestBufferAllocatorAcquireMintsAscendingIndices(t *testing.T) {
	a := newBufferAllocator[testPT](1)
	b0 := a.acquire(testPT{})
	b1 := a.acquire(testPT{})
	b2 := a.acquire(testPT{})
	if b0.Index != 0 || b1.Index != 1 || b2.Index != 2 {
		t.Fatalf("got indices %d,%d,%d, want 0,1,2", b0.Index, b1.Index, b2.Index)
	}
}

func TestBufferAllocatorReleaseThenAcquireReuses(t *testing.T) {
	a := newBufferAllocator[testPT](1)
	b0 := a.acquire(testPT{})
	_ = a.acquire(testPT{})
	a.release(b0)
	reused := a.acquire(testPT{})
	if reused.Index != b0.Index {
		t.Fatalf("reused index = %d, want %d", reused.Index, b0.Index)
	}
}

func TestBufferAllocatorClearResetsState(t *testing.T) {
	a := newBufferAllocator[testPT](1)
	_ = a.acquire(testPT{})
	_ = a.acquire(testPT{})
	a.clear()
	if got := a.totalAcquired(); got != 0 {
		t.Fatalf("totalAcquired after clear = %d, want 0", got)
	}
	fresh := a.acquire(testPT{})
	if fresh.Index != 0 {
		t.Fatalf("first acquire after clear = %d, want 0", fresh.Index)
	}
}

// testPT is a single-type PortType stub used to exercise the allocator in
// isolation, without pulling in the porttype package's DefaultPortType.
type testPT struct{}

func (testPT) Index() int    { return 0 }
func (testPT) NumTypes() int { return 1 }
