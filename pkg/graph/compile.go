package graph

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MeadowlarkDAW/audio-graph/pkg/observer"
	"github.com/MeadowlarkDAW/audio-graph/pkg/porttype"
)

// compileScratch holds every container the compiler reuses across Compile
// (and, for the cycle-guard fields, Connect) calls: the cycle-guard BFS
// queue and visited set, the Kahn queue and in-degree vector, the latency
// vector, the buffer allocator, the output-assignment and delay-compensation
// maps, and the output schedule itself. A freshly constructed Graph starts
// with these containers empty; they grow on demand and are cleared (not
// reallocated) at the start of each call that uses them.
type compileScratch[PT porttype.PortType, Ident any] struct {
	// cycle guard (see cycle.go)
	cycleQueue   []NodeHandle
	cycleVisited []bool
	cycleTouched []NodeHandle

	// topological walker
	inDegree   []int
	kahnQueue  []NodeHandle
	visitOrder []NodeHandle

	// latency solver
	arrival []int64

	// buffer allocator
	bufs *bufferAllocator[PT]

	// schedule assembly
	outputAssign map[PortHandle]*bufAssignment[PT]
	delayComp    map[edgeKey]int64
	scheduled    []Scheduled[PT, Ident]
}

func newCompileScratch[PT porttype.PortType, Ident any](numTypes, initialQueueCap int) compileScratch[PT, Ident] {
	return compileScratch[PT, Ident]{
		cycleQueue:   make([]NodeHandle, 0, initialQueueCap),
		cycleTouched: make([]NodeHandle, 0, initialQueueCap),
		kahnQueue:    make([]NodeHandle, 0, initialQueueCap),
		bufs:         newBufferAllocator[PT](numTypes),
		outputAssign: make(map[PortHandle]*bufAssignment[PT]),
		delayComp:    make(map[edgeKey]int64),
	}
}

// growNodeScratch extends the per-node scratch slices that are indexed
// directly by NodeHandle (cycleVisited, inDegree, arrival) to at least n
// elements, without disturbing existing entries.
func (s *compileScratch[PT, Ident]) growNodeScratch(n int) {
	for len(s.cycleVisited) < n {
		s.cycleVisited = append(s.cycleVisited, false)
	}
	for len(s.inDegree) < n {
		s.inDegree = append(s.inDegree, 0)
	}
	for len(s.arrival) < n {
		s.arrival = append(s.arrival, 0)
	}
}

// Compile walks the graph in topological order, solving per-node arrival
// latency and per-edge delay compensation, assigning and recycling typed
// intermediate buffers, and returns the resulting schedule: one Scheduled
// entry per live node in visit order. The returned slice is valid until the
// next mutating call or the next Compile.
//
// Compile cannot fail given the invariants the Graph store and cycle guard
// maintain; it has no error return. It must not be called reentrantly.
func (g *Graph[PT, Ident]) Compile() []Scheduled[PT, Ident] {
	if g.compiling {
		panic("graph: Compile called reentrantly")
	}
	g.compiling = true
	defer func() { g.compiling = false }()

	compileID := uuid.New().String()
	start := time.Now()
	edgeCount := g.countLiveEdges()

	g.observers.Notify(context.Background(), observer.Event{
		Type:      observer.EventCompileStart,
		Status:    observer.StatusStarted,
		Timestamp: start,
		CompileID: compileID,
		NodeCount: g.liveNodes,
		EdgeCount: edgeCount,
	})

	order := g.topologicalWalk(compileID)
	schedule := g.assembleSchedule(order)

	g.observers.Notify(context.Background(), observer.Event{
		Type:      observer.EventCompileEnd,
		Status:    observer.StatusSuccess,
		Timestamp: time.Now(),
		CompileID: compileID,
		NodeCount: g.liveNodes,
		EdgeCount: edgeCount,
		Duration:  time.Since(start),
		Metadata:  map[string]any{"buffer_count": g.scratch.bufs.totalAcquired()},
	})

	return schedule
}

func (g *Graph[PT, Ident]) countLiveEdges() int {
	n := 0
	for i := range g.nodes {
		if g.nodes[i].alive {
			n += len(g.nodes[i].outEdges)
		}
	}
	return n
}

// topologicalWalk runs Kahn's algorithm over the live nodes, invoking
// processNode (latency solve + buffer bookkeeping) on each node as it is
// visited, and returns the visit order. In-degree is the count of each
// node's live dependency edges. The initial zero-in-degree nodes are queued
// in ascending handle order; a node that becomes ready later is queued (FIFO)
// in the insertion order of the dependency edges of the node that released
// it, so the schedule is deterministic.
func (g *Graph[PT, Ident]) topologicalWalk(compileID string) []NodeHandle {
	s := &g.scratch
	n := len(g.nodes)
	s.growNodeScratch(n)
	s.bufs.clear()
	clear(s.outputAssign)
	clear(s.delayComp)

	queue := s.kahnQueue[:0]
	for h := 0; h < n; h++ {
		nh := NodeHandle(h)
		if !g.nodes[nh].alive {
			continue
		}
		s.inDegree[nh] = len(g.nodes[nh].inEdges)
		if s.inDegree[nh] == 0 {
			queue = append(queue, nh)
		}
	}

	order := s.visitOrder[:0]
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		order = append(order, cur)
		g.processNode(cur)
		g.observers.Notify(context.Background(), observer.Event{
			Type:      observer.EventNodeScheduled,
			Status:    observer.StatusSuccess,
			CompileID: compileID,
			Metadata:  map[string]any{"node": cur},
		})

		for _, e := range g.nodes[cur].outEdges {
			nb := e.dstNode
			if s.inDegree[nb] <= 0 {
				panic("graph: in-degree corruption during topological walk")
			}
			s.inDegree[nb]--
			if s.inDegree[nb] == 0 {
				queue = append(queue, nb)
			}
		}
	}

	if len(order) != g.liveNodes {
		panic("graph: topological walk did not visit every live node (corrupted graph state)")
	}

	s.kahnQueue = queue[:0]
	s.visitOrder = order
	return order
}

// processNode solves n's arrival latency and per-edge delay compensation,
// then performs the buffer allocator's outputs-before-inputs bookkeeping for
// n, per the ordering contract described in doc.go.
func (g *Graph[PT, Ident]) processNode(n NodeHandle) {
	g.solveLatency(n)
	g.allocateOutputs(n)
	g.releaseInputs(n)
}

// solveLatency computes n's arrival latency as the max, over n's dependency
// edges, of (producer arrival latency + producer intrinsic delay) — 0 if n
// has no dependencies — and records delay compensation for every dependency
// edge whose path latency falls short of that max.
func (g *Graph[PT, Ident]) solveLatency(n NodeHandle) {
	s := &g.scratch
	deps := g.nodes[n].inEdges

	var maxLat int64
	for _, e := range deps {
		lat := g.pathLatency(e)
		if lat > maxLat {
			maxLat = lat
		}
	}
	s.arrival[n] = maxLat

	for _, e := range deps {
		lat := g.pathLatency(e)
		if lat < maxLat {
			s.delayComp[edgeKey{src: e.srcPort, dst: e.dstPort}] = maxLat - lat
		}
	}
}

// pathLatency returns the latency a signal carries along edge e as it
// arrives at e's destination: the producer's arrival latency plus the
// producer's own intrinsic delay. The producer is guaranteed to have been
// visited already, since Kahn's algorithm visits all dependencies first.
// Both terms are non-negative, so a sum that overflows int64 panics.
func (g *Graph[PT, Ident]) pathLatency(e edge) int64 {
	arrival := g.scratch.arrival[e.srcNode]
	lat := arrival + g.nodes[e.srcNode].delay
	if lat < arrival {
		panic("graph: latency arithmetic overflow")
	}
	return lat
}

// allocateOutputs processes n's ports in stored order; for every outgoing
// edge of a port, it acquires that port's output buffer on the first such
// edge and increments its refcount once per outgoing edge.
func (g *Graph[PT, Ident]) allocateOutputs(n NodeHandle) {
	s := &g.scratch
	slot := &g.nodes[n]
	for _, p := range slot.ports {
		for _, e := range slot.outEdges {
			if e.srcPort != p {
				continue
			}
			assign, ok := s.outputAssign[p]
			if !ok {
				buf := s.bufs.acquire(g.ports[p].typ)
				assign = &bufAssignment[PT]{buf: buf}
				s.outputAssign[p] = assign
			}
			assign.refcount++
		}
	}
}

// releaseInputs processes n's ports in stored order; for every incoming
// edge of a port, it decrements the producer's output-buffer refcount and
// releases the buffer once it drains to zero.
func (g *Graph[PT, Ident]) releaseInputs(n NodeHandle) {
	s := &g.scratch
	slot := &g.nodes[n]
	for _, p := range slot.ports {
		for _, e := range slot.inEdges {
			if e.dstPort != p {
				continue
			}
			assign, ok := s.outputAssign[e.srcPort]
			if !ok {
				panic("graph: missing output assignment for a visited producer")
			}
			assign.refcount--
			if assign.refcount == 0 {
				s.bufs.release(assign.buf)
			}
		}
	}
}

// assembleSchedule builds one Scheduled entry per node in order, using the
// final (immutable-once-acquired) output-buffer assignments and delay
// compensations recorded over the whole walk.
func (g *Graph[PT, Ident]) assembleSchedule(order []NodeHandle) []Scheduled[PT, Ident] {
	s := &g.scratch
	out := s.scheduled[:0]

	for _, n := range order {
		slot := &g.nodes[n]
		entry := Scheduled[PT, Ident]{Node: slot.ident}

		for _, p := range slot.ports {
			var sources []ScheduledInputSource[PT]
			for _, e := range slot.inEdges {
				if e.dstPort != p {
					continue
				}
				producer, ok := s.outputAssign[e.srcPort]
				if !ok {
					panic("graph: missing output assignment while assembling schedule")
				}
				sources = append(sources, ScheduledInputSource[PT]{
					Buffer:    producer.buf,
					DelayComp: s.delayComp[edgeKey{src: e.srcPort, dst: e.dstPort}],
				})
			}
			if len(sources) > 0 {
				ident, _ := g.PortIdent(p)
				entry.Inputs = append(entry.Inputs, ScheduledInput[PT, Ident]{
					PortIdent: ident,
					Sources:   sources,
				})
			}
		}

		for _, p := range slot.ports {
			hasOutput := false
			for _, e := range slot.outEdges {
				if e.srcPort == p {
					hasOutput = true
					break
				}
			}
			if !hasOutput {
				continue
			}
			assign, ok := s.outputAssign[p]
			if !ok {
				panic("graph: missing output assignment for a port with outgoing edges")
			}
			ident, _ := g.PortIdent(p)
			entry.Outputs = append(entry.Outputs, ScheduledOutput[PT, Ident]{
				PortIdent: ident,
				Buffer:    assign.buf,
			})
		}

		out = append(out, entry)
	}

	s.scheduled = out
	return out
}
