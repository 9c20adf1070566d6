package graph

import (
	"github.com/MeadowlarkDAW/audio-graph/pkg/config"
	"github.com/MeadowlarkDAW/audio-graph/pkg/logging"
	"github.com/MeadowlarkDAW/audio-graph/pkg/observer"
	"github.com/MeadowlarkDAW/audio-graph/pkg/porttype"
)

// Graph is a mutable, port-level DAG of processing nodes. It owns all node,
// port, and edge storage, plus the compiler's scratch state (cycle-guard BFS
// queue, Kahn queue, latency vector, buffer allocator, assignment maps, and
// the output schedule), so that Compile does not allocate in steady state.
//
// Graph is generic over the port-type capability PT (see package porttype)
// and over Ident, the user-supplied node/port identifier type, which the
// graph never inspects — it is cloned and passed through verbatim.
type Graph[PT porttype.PortType, Ident any] struct {
	cfg       *config.Config
	logger    *logging.Logger
	observers *observer.Manager

	nodes    []nodeSlot[Ident]
	nodeFree []NodeHandle
	liveNodes int

	ports    []portSlot[PT, Ident]
	portFree []PortHandle

	compiling bool

	scratch compileScratch[PT, Ident]
}

// New creates an empty Graph using default configuration and a zero value of
// PT solely to discover the port-type enumeration's cardinality.
func New[PT porttype.PortType, Ident any]() *Graph[PT, Ident] {
	return NewWithConfig[PT, Ident](config.Default())
}

// NewWithConfig creates an empty Graph, pre-sizing its arenas and scratch
// containers per cfg. A nil cfg is replaced with config.Default().
func NewWithConfig[PT porttype.PortType, Ident any](cfg *config.Config) *Graph[PT, Ident] {
	if cfg == nil {
		cfg = config.Default()
	}

	var zeroPT PT
	g := &Graph[PT, Ident]{
		cfg:       cfg,
		logger:    logging.NoOp(),
		observers: observer.NewManager(),
		nodes:     make([]nodeSlot[Ident], 0, cfg.InitialNodeCapacity),
		ports:     make([]portSlot[PT, Ident], 0, cfg.InitialPortCapacity),
	}
	g.scratch = newCompileScratch[PT, Ident](zeroPT.NumTypes(), cfg.InitialScratchQueueCapacity)
	return g
}

// SetLogger installs logger for subsequent mutation/compile logging. A nil
// logger is replaced with logging.NoOp().
func (g *Graph[PT, Ident]) SetLogger(logger *logging.Logger) {
	if logger == nil {
		logger = logging.NoOp()
	}
	g.logger = logger
}

// Observers returns the observer manager so callers can Register lifecycle
// observers (console, telemetry, or custom).
func (g *Graph[PT, Ident]) Observers() *observer.Manager {
	return g.observers
}

// ----------------------------------------------------------------------------
// Node lifecycle
// ----------------------------------------------------------------------------

// AddNode creates a node with the given identifier, recycling a freed handle
// when one is available, and returns its handle.
func (g *Graph[PT, Ident]) AddNode(ident Ident) NodeHandle {
	if n := len(g.nodeFree); n > 0 {
		h := g.nodeFree[n-1]
		g.nodeFree = g.nodeFree[:n-1]
		g.nodes[h] = nodeSlot[Ident]{alive: true, ident: ident}
		g.liveNodes++
		g.logger.WithField("node", h).Debug("node added")
		return h
	}
	g.nodes = append(g.nodes, nodeSlot[Ident]{alive: true, ident: ident})
	g.liveNodes++
	h := NodeHandle(len(g.nodes) - 1)
	g.logger.WithField("node", h).Debug("node added")
	return h
}

// DeleteNode deletes node and cascades to all of its ports (and, through
// them, every edge touching those ports). The handle is returned to the free
// list for future reuse.
func (g *Graph[PT, Ident]) DeleteNode(node NodeHandle) error {
	if !g.nodeValid(node) {
		return ErrNodeDoesNotExist
	}
	// Copy: DeletePort mutates slot.ports as it goes.
	ports := append([]PortHandle(nil), g.nodes[node].ports...)
	for _, p := range ports {
		_ = g.DeletePort(p)
	}
	g.nodes[node] = nodeSlot[Ident]{}
	g.nodeFree = append(g.nodeFree, node)
	g.liveNodes--
	g.logger.WithField("node", node).Debug("node deleted")
	return nil
}

// SetDelay updates node's intrinsic processing delay. delay must be
// non-negative; a negative delay is a programmer error (panic), matching the
// treatment of every other invariant violation in this package.
func (g *Graph[PT, Ident]) SetDelay(node NodeHandle, delay int64) error {
	if !g.nodeValid(node) {
		return ErrNodeDoesNotExist
	}
	if delay < 0 {
		panic("graph: SetDelay called with a negative delay")
	}
	g.nodes[node].delay = delay
	return nil
}

// Delay returns node's intrinsic processing delay.
func (g *Graph[PT, Ident]) Delay(node NodeHandle) (int64, error) {
	if !g.nodeValid(node) {
		return 0, ErrNodeDoesNotExist
	}
	return g.nodes[node].delay, nil
}

// NodeIdent returns node's user identifier.
func (g *Graph[PT, Ident]) NodeIdent(node NodeHandle) (Ident, error) {
	if !g.nodeValid(node) {
		var zero Ident
		return zero, ErrNodeDoesNotExist
	}
	return g.nodes[node].ident, nil
}

// SetNodeIdent updates node's user identifier.
func (g *Graph[PT, Ident]) SetNodeIdent(node NodeHandle, ident Ident) error {
	if !g.nodeValid(node) {
		return ErrNodeDoesNotExist
	}
	g.nodes[node].ident = ident
	return nil
}

// ----------------------------------------------------------------------------
// Port lifecycle
// ----------------------------------------------------------------------------

// AddPort creates a port of the given type on node, recycling a freed handle
// when one is available, and returns its handle.
func (g *Graph[PT, Ident]) AddPort(node NodeHandle, typ PT, ident Ident) (PortHandle, error) {
	if !g.nodeValid(node) {
		return 0, ErrNodeDoesNotExist
	}

	var p PortHandle
	if n := len(g.portFree); n > 0 {
		p = g.portFree[n-1]
		g.portFree = g.portFree[:n-1]
		g.ports[p] = portSlot[PT, Ident]{alive: true, owner: node, typ: typ, ident: ident}
	} else {
		g.ports = append(g.ports, portSlot[PT, Ident]{alive: true, owner: node, typ: typ, ident: ident})
		p = PortHandle(len(g.ports) - 1)
	}

	g.nodes[node].ports = append(g.nodes[node].ports, p)
	g.logger.WithField("port", p).WithField("node", node).Debug("port added")
	return p, nil
}

// DeletePort removes every edge touching port (from both endpoints'
// adjacency lists), removes port from its owner's port list, and returns the
// handle to the free list.
func (g *Graph[PT, Ident]) DeletePort(port PortHandle) error {
	if !g.portValid(port) {
		return ErrPortDoesNotExist
	}

	owner := g.ports[port].owner

	// Disconnect every edge touching this port, on both sides.
	for _, e := range append([]edge(nil), g.nodes[owner].outEdges...) {
		if e.srcPort == port {
			g.removeEdge(e)
		}
	}
	for _, e := range append([]edge(nil), g.nodes[owner].inEdges...) {
		if e.dstPort == port {
			g.removeEdge(e)
		}
	}

	// Remove port from its owner's port list.
	ownerPorts := g.nodes[owner].ports
	for i, p := range ownerPorts {
		if p == port {
			g.nodes[owner].ports = append(ownerPorts[:i], ownerPorts[i+1:]...)
			break
		}
	}

	g.ports[port] = portSlot[PT, Ident]{}
	g.portFree = append(g.portFree, port)
	g.logger.WithField("port", port).Debug("port deleted")
	return nil
}

// PortIdent returns port's user identifier.
func (g *Graph[PT, Ident]) PortIdent(port PortHandle) (Ident, error) {
	if !g.portValid(port) {
		var zero Ident
		return zero, ErrPortDoesNotExist
	}
	return g.ports[port].ident, nil
}

// SetPortIdent updates port's user identifier.
func (g *Graph[PT, Ident]) SetPortIdent(port PortHandle, ident Ident) error {
	if !g.portValid(port) {
		return ErrPortDoesNotExist
	}
	g.ports[port].ident = ident
	return nil
}

// PortType returns port's type.
func (g *Graph[PT, Ident]) PortType(port PortHandle) (PT, error) {
	if !g.portValid(port) {
		var zero PT
		return zero, ErrPortDoesNotExist
	}
	return g.ports[port].typ, nil
}

// ----------------------------------------------------------------------------
// Handle validity
// ----------------------------------------------------------------------------

// A handle is valid iff its index is within the current high-water mark and
// the slot it names has not been freed (tracked by the slot's alive flag,
// which is equivalent to — but O(1) instead of — a free-list membership scan).
func (g *Graph[PT, Ident]) nodeValid(n NodeHandle) bool {
	return int(n) < len(g.nodes) && g.nodes[n].alive
}

func (g *Graph[PT, Ident]) portValid(p PortHandle) bool {
	return int(p) < len(g.ports) && g.ports[p].alive
}

// removeEdge deletes e from both endpoints' adjacency lists. It does not
// validate e's existence; callers must only pass edges known to be present.
func (g *Graph[PT, Ident]) removeEdge(e edge) {
	out := g.nodes[e.srcNode].outEdges
	for i, oe := range out {
		if sameEdge(oe, e) {
			g.nodes[e.srcNode].outEdges = append(out[:i], out[i+1:]...)
			break
		}
	}
	in := g.nodes[e.dstNode].inEdges
	for i, ie := range in {
		if sameEdge(ie, e) {
			g.nodes[e.dstNode].inEdges = append(in[:i], in[i+1:]...)
			break
		}
	}
}
