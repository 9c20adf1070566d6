// Package porttype defines the capability a port-type enumeration must satisfy
// to be used with the graph compiler, plus a default two-member enumeration.
package porttype

// PortType is the capability a user-supplied port-type enumeration must satisfy.
// It must be comparable (so it can key maps and be tested for edge-type equality)
// and project onto a dense, zero-based integer space of known cardinality, so the
// buffer allocator can keep one free-list per type in a plain slice rather than a map.
type PortType interface {
	comparable

	// Index returns this value's position in [0, NumTypes()).
	Index() int

	// NumTypes returns the cardinality of the enumeration.
	NumTypes() int
}

// DefaultPortType is the built-in two-member enumeration: Audio and Event.
type DefaultPortType int

const (
	// Audio is a continuous sample-stream port type.
	Audio DefaultPortType = iota
	// Event is a discrete message-stream port type.
	Event
)

// Index implements PortType.
func (t DefaultPortType) Index() int { return int(t) }

// NumTypes implements PortType.
func (t DefaultPortType) NumTypes() int { return 2 }

// String renders the default port type for diagnostics and logging.
func (t DefaultPortType) String() string {
	switch t {
	case Audio:
		return "Audio"
	case Event:
		return "Event"
	default:
		return "Unknown"
	}
}
