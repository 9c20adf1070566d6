package graph

import "errors"

// Sentinel errors for graph operations. All user-facing failures are
// enumerated here; internal invariant violations panic instead.
var (
	// ErrNodeDoesNotExist is returned when a NodeHandle is out of range or freed.
	ErrNodeDoesNotExist = errors.New("graph: node does not exist")

	// ErrPortDoesNotExist is returned when a PortHandle is out of range or freed.
	ErrPortDoesNotExist = errors.New("graph: port does not exist")

	// ErrInvalidPortType is returned by Connect when the two ports' types differ.
	ErrInvalidPortType = errors.New("graph: source and destination port types differ")

	// ErrCycle is returned by Connect when the edge would close a directed cycle.
	ErrCycle = errors.New("graph: connecting these ports would introduce a cycle")

	// ErrConnectionDoesNotExist is returned by Disconnect when no matching edge exists.
	ErrConnectionDoesNotExist = errors.New("graph: no connection between these ports")
)
