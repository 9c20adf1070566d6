package graph

import (
	"testing"

	"github.com/MeadowlarkDAW/audio-graph/pkg/porttype"
)

// TestScenarioS6EmptyGraph implements spec scenario S6.
func TestScenarioS6EmptyGraph(t *testing.T) {
	g := newTestGraph()
	sched := g.Compile()
	if len(sched) != 0 {
		t.Fatalf("Compile() on empty graph = %d entries, want 0", len(sched))
	}
}

func TestCompileLinearChainOrder(t *testing.T) {
	g := newTestGraph()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")

	aOut, _ := g.AddPort(a, porttype.Audio, "out")
	bIn, _ := g.AddPort(b, porttype.Audio, "in")
	bOut, _ := g.AddPort(b, porttype.Audio, "out")
	cIn, _ := g.AddPort(c, porttype.Audio, "in")

	if err := g.Connect(aOut, bIn); err != nil {
		t.Fatalf("Connect(a,b): %v", err)
	}
	if err := g.Connect(bOut, cIn); err != nil {
		t.Fatalf("Connect(b,c): %v", err)
	}

	sched := g.Compile()
	if len(sched) != 3 {
		t.Fatalf("len(sched) = %d, want 3", len(sched))
	}
	want := []string{"a", "b", "c"}
	for i, entry := range sched {
		if entry.Node != want[i] {
			t.Fatalf("sched[%d].Node = %q, want %q", i, entry.Node, want[i])
		}
	}
}

// TestScenarioS3DiamondLatency implements spec scenario S3: a diamond
// a -> b -> d and a -> c -> d, where b has a longer intrinsic delay than c,
// so d's edge from c must receive delay compensation equal to the
// difference.
func TestScenarioS3DiamondLatency(t *testing.T) {
	g := newTestGraph()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")
	d := g.AddNode("d")

	aOut1, _ := g.AddPort(a, porttype.Audio, "out1")
	aOut2, _ := g.AddPort(a, porttype.Audio, "out2")
	bIn, _ := g.AddPort(b, porttype.Audio, "in")
	bOut, _ := g.AddPort(b, porttype.Audio, "out")
	cIn, _ := g.AddPort(c, porttype.Audio, "in")
	cOut, _ := g.AddPort(c, porttype.Audio, "out")
	dInFromB, _ := g.AddPort(d, porttype.Audio, "in_b")
	dInFromC, _ := g.AddPort(d, porttype.Audio, "in_c")

	if err := g.SetDelay(b, 10); err != nil {
		t.Fatalf("SetDelay(b): %v", err)
	}
	if err := g.SetDelay(c, 3); err != nil {
		t.Fatalf("SetDelay(c): %v", err)
	}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	must(g.Connect(aOut1, bIn))
	must(g.Connect(aOut2, cIn))
	must(g.Connect(bOut, dInFromB))
	must(g.Connect(cOut, dInFromC))

	sched := g.Compile()

	var dEntry *Scheduled[porttype.DefaultPortType, string]
	for i := range sched {
		if sched[i].Node == "d" {
			dEntry = &sched[i]
		}
	}
	if dEntry == nil {
		t.Fatal("no schedule entry for d")
	}

	var gotFromB, gotFromC *ScheduledInput[porttype.DefaultPortType, string]
	for i := range dEntry.Inputs {
		switch dEntry.Inputs[i].PortIdent {
		case "in_b":
			gotFromB = &dEntry.Inputs[i]
		case "in_c":
			gotFromC = &dEntry.Inputs[i]
		}
	}
	if gotFromB == nil || gotFromC == nil {
		t.Fatalf("d missing an input: from_b=%v from_c=%v", gotFromB, gotFromC)
	}
	if gotFromB.Sources[0].DelayComp != 0 {
		t.Fatalf("d.in_b DelayComp = %d, want 0 (longest path)", gotFromB.Sources[0].DelayComp)
	}
	if gotFromC.Sources[0].DelayComp != 7 {
		t.Fatalf("d.in_c DelayComp = %d, want 7 (10-3)", gotFromC.Sources[0].DelayComp)
	}
}

// TestScenarioS4BufferReuse implements spec scenario S4: once a producer's
// buffer refcount drains to zero it is returned to the free stack and a
// later acquire for that port type reuses the same index. A node's outputs
// are allocated before its inputs are released (see allocateOutputs /
// releaseInputs in compile.go), so in a four-node chain a -> b -> c -> d,
// a's buffer is only freed while b is visited and becomes available again
// for c's output, one step later than a naive "immediately reused" model
// would suggest.
func TestScenarioS4BufferReuse(t *testing.T) {
	g := newTestGraph()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")
	d := g.AddNode("d")

	aOut, _ := g.AddPort(a, porttype.Audio, "out")
	bIn, _ := g.AddPort(b, porttype.Audio, "in")
	bOut, _ := g.AddPort(b, porttype.Audio, "out")
	cIn, _ := g.AddPort(c, porttype.Audio, "in")
	cOut, _ := g.AddPort(c, porttype.Audio, "out")
	dIn, _ := g.AddPort(d, porttype.Audio, "in")

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	must(g.Connect(aOut, bIn))
	must(g.Connect(bOut, cIn))
	must(g.Connect(cOut, dIn))

	sched := g.Compile()

	bufOf := func(node string) int {
		for _, entry := range sched {
			if entry.Node == node {
				return entry.Outputs[0].Buffer.Index
			}
		}
		t.Fatalf("no schedule entry for %s", node)
		return -1
	}

	aBuf, bBuf, cBuf := bufOf("a"), bufOf("b"), bufOf("c")
	if aBuf != 0 {
		t.Fatalf("a's buffer index = %d, want 0", aBuf)
	}
	if bBuf == aBuf {
		t.Fatalf("b's buffer index = %d, want distinct from a's (%d)", bBuf, aBuf)
	}
	if cBuf != aBuf {
		t.Fatalf("c's buffer index = %d, want %d (reused from a once freed)", cBuf, aBuf)
	}
}

// TestScenarioS5FanOutRefcount implements spec scenario S5: a producer with
// multiple consumers keeps its buffer alive until the last consumer drains
// it.
func TestScenarioS5FanOutRefcount(t *testing.T) {
	g := newTestGraph()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")

	aOut, _ := g.AddPort(a, porttype.Audio, "out")
	bIn, _ := g.AddPort(b, porttype.Audio, "in")
	cIn, _ := g.AddPort(c, porttype.Audio, "in")

	if err := g.Connect(aOut, bIn); err != nil {
		t.Fatalf("Connect(a,b): %v", err)
	}
	if err := g.Connect(aOut, cIn); err != nil {
		t.Fatalf("Connect(a,c): %v", err)
	}

	sched := g.Compile()

	var aBuf int
	for _, entry := range sched {
		if entry.Node == "a" {
			aBuf = entry.Outputs[0].Buffer.Index
		}
	}
	for _, entry := range sched {
		if entry.Node == "b" || entry.Node == "c" {
			if len(entry.Inputs) != 1 || entry.Inputs[0].Sources[0].Buffer.Index != aBuf {
				t.Fatalf("%s did not read a's fan-out buffer", entry.Node)
			}
		}
	}
}

func TestCompilePanicsOnReentry(t *testing.T) {
	g := newTestGraph()
	g.compiling = true
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Compile did not panic on reentry")
		}
	}()
	g.Compile()
}

func TestCompileIsDeterministicAcrossRuns(t *testing.T) {
	g := newTestGraph()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")
	aOut, _ := g.AddPort(a, porttype.Audio, "out")
	bIn, _ := g.AddPort(b, porttype.Audio, "in")
	bOut, _ := g.AddPort(b, porttype.Audio, "out")
	cIn, _ := g.AddPort(c, porttype.Audio, "in")
	_ = g.Connect(aOut, bIn)
	_ = g.Connect(bOut, cIn)

	first := g.Compile()
	second := g.Compile()

	if len(first) != len(second) {
		t.Fatalf("schedule length changed across repeated Compile calls")
	}
	for i := range first {
		if first[i].Node != second[i].Node {
			t.Fatalf("entry %d order differs across repeated Compile calls: %v vs %v", i, first[i].Node, second[i].Node)
		}
	}
}

func TestCompileTiesBrokenByAscendingHandle(t *testing.T) {
	g := newTestGraph()
	// Three independent (no-edge) nodes: all in-degree 0 simultaneously.
	// Kahn's queue must preserve ascending-handle order among ties.
	_ = g.AddNode("first")
	_ = g.AddNode("second")
	_ = g.AddNode("third")

	sched := g.Compile()
	want := []string{"first", "second", "third"}
	for i, entry := range sched {
		if entry.Node != want[i] {
			t.Fatalf("sched[%d].Node = %q, want %q", i, entry.Node, want[i])
		}
	}
}
