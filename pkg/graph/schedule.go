package graph

import "github.com/MeadowlarkDAW/audio-graph/pkg/porttype"

// ScheduledInputSource pairs one incoming edge's producer buffer with the
// delay compensation that must be applied on that edge (0 when no
// compensation is needed).
type ScheduledInputSource[PT porttype.PortType] struct {
	Buffer    Buffer[PT]
	DelayComp int64
}

// ScheduledInput describes one input port of a scheduled node: its user
// identifier and one ScheduledInputSource per incoming edge.
type ScheduledInput[PT porttype.PortType, Ident any] struct {
	PortIdent Ident
	Sources   []ScheduledInputSource[PT]
}

// ScheduledOutput describes one output port of a scheduled node: its user
// identifier and the single buffer assigned to it.
type ScheduledOutput[PT porttype.PortType, Ident any] struct {
	PortIdent Ident
	Buffer    Buffer[PT]
}

// Scheduled is one entry of a compiled schedule: a node's cloned user
// identifier plus its input and output descriptors. Ports with no incoming
// (outgoing) edges are omitted from Inputs (Outputs).
type Scheduled[PT porttype.PortType, Ident any] struct {
	Node    Ident
	Inputs  []ScheduledInput[PT, Ident]
	Outputs []ScheduledOutput[PT, Ident]
}
