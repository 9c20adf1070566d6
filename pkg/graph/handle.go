package graph

import "github.com/MeadowlarkDAW/audio-graph/pkg/porttype"

// NodeHandle is an opaque dense index identifying a node. It is stable for
// the lifetime of the node it names and may be recycled after DeleteNode.
type NodeHandle uint32

// PortHandle is an opaque dense index identifying a port. It is stable for
// the lifetime of the port it names and may be recycled after DeletePort.
type PortHandle uint32

// edge is a directed connection between two ports. Edge equality is defined
// solely by (srcPort, dstPort): a port belongs to exactly one node and has
// exactly one type, so the port pair is sufficient identity.
type edge struct {
	srcNode NodeHandle
	srcPort PortHandle
	dstNode NodeHandle
	dstPort PortHandle
}

func sameEdge(a, b edge) bool {
	return a.srcPort == b.srcPort && a.dstPort == b.dstPort
}

// edgeKey is the map key used for the delay-compensation scratch: it mirrors
// edge's (srcPort, dstPort) equality contract.
type edgeKey struct {
	src PortHandle
	dst PortHandle
}

type nodeSlot[Ident any] struct {
	alive bool
	ident Ident
	delay int64
	ports []PortHandle

	// outEdges holds every edge whose srcNode is this node (this node's
	// dependents' incoming edges); inEdges holds every edge whose dstNode is
	// this node (this node's dependency edges). Both copies of a live edge
	// are kept coherent by every mutation.
	outEdges []edge
	inEdges  []edge
}

type portSlot[PT porttype.PortType, Ident any] struct {
	alive bool
	owner NodeHandle
	typ   PT
	ident Ident
}
