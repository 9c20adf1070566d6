package graph

import (
	"context"

	"github.com/MeadowlarkDAW/audio-graph/pkg/observer"
)

// Connect adds a directed edge from src to dst. Both ports must exist and
// share a port type. If dst already has an incoming edge from src, Connect
// is idempotent and returns nil without modifying the graph. Otherwise a
// breadth-first reachability walk forward from dst's owner (through the
// dependents relation) checks whether src's owner would become reachable;
// if so the edge is rejected as ErrCycle and nothing is mutated.
func (g *Graph[PT, Ident]) Connect(src, dst PortHandle) error {
	if !g.portValid(src) {
		return ErrPortDoesNotExist
	}
	if !g.portValid(dst) {
		return ErrPortDoesNotExist
	}

	srcPort := g.ports[src]
	dstPort := g.ports[dst]
	if srcPort.typ != dstPort.typ {
		return ErrInvalidPortType
	}

	for _, e := range g.nodes[dstPort.owner].inEdges {
		if e.srcPort == src && e.dstPort == dst {
			return nil
		}
	}

	if g.wouldCreateCycle(srcPort.owner, dstPort.owner) {
		g.observers.Notify(context.Background(), observer.Event{
			Type:   observer.EventCycleRejected,
			Status: observer.StatusFailure,
			Err:    ErrCycle,
		})
		return ErrCycle
	}

	e := edge{srcNode: srcPort.owner, srcPort: src, dstNode: dstPort.owner, dstPort: dst}
	g.nodes[srcPort.owner].outEdges = append(g.nodes[srcPort.owner].outEdges, e)
	g.nodes[dstPort.owner].inEdges = append(g.nodes[dstPort.owner].inEdges, e)
	g.logger.WithField("src_port", src).WithField("dst_port", dst).Debug("connected")
	return nil
}

// Disconnect removes the edge from src to dst. If it is absent from either
// endpoint's adjacency list, it returns ErrConnectionDoesNotExist and leaves
// the graph unchanged.
func (g *Graph[PT, Ident]) Disconnect(src, dst PortHandle) error {
	if !g.portValid(src) {
		return ErrPortDoesNotExist
	}
	if !g.portValid(dst) {
		return ErrPortDoesNotExist
	}

	srcOwner := g.ports[src].owner
	dstOwner := g.ports[dst].owner
	target := edge{srcNode: srcOwner, srcPort: src, dstNode: dstOwner, dstPort: dst}

	foundOut := false
	for _, e := range g.nodes[srcOwner].outEdges {
		if sameEdge(e, target) {
			foundOut = true
			break
		}
	}
	foundIn := false
	for _, e := range g.nodes[dstOwner].inEdges {
		if sameEdge(e, target) {
			foundIn = true
			break
		}
	}
	if !foundOut || !foundIn {
		return ErrConnectionDoesNotExist
	}

	g.removeEdge(target)
	g.logger.WithField("src_port", src).WithField("dst_port", dst).Debug("disconnected")
	return nil
}

// wouldCreateCycle reports whether an edge from src to dst would close a
// directed cycle, by checking whether src is reachable from dst through the
// dependents relation (forward adjacency). A self-loop (src == dst, same
// node) is caught immediately, since dst is reachable from itself.
//
// The queue and visited-set scratch are owned by the graph and cleared
// before and after this call, so repeated Connect calls do not allocate.
func (g *Graph[PT, Ident]) wouldCreateCycle(src, dst NodeHandle) bool {
	s := &g.scratch
	s.growNodeScratch(len(g.nodes))

	queue := s.cycleQueue[:0]
	touched := s.cycleTouched[:0]

	markVisited := func(n NodeHandle) {
		s.cycleVisited[n] = true
		touched = append(touched, n)
		queue = append(queue, n)
	}
	markVisited(dst)

	found := false
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		if cur == src {
			found = true
			break
		}
		for _, e := range g.nodes[cur].outEdges {
			if !s.cycleVisited[e.dstNode] {
				markVisited(e.dstNode)
			}
		}
	}

	for _, n := range touched {
		s.cycleVisited[n] = false
	}
	s.cycleQueue = queue[:0]
	s.cycleTouched = touched[:0]

	return found
}
