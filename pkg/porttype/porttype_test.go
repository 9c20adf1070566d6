package porttype

import "testing"

func TestDefaultPortTypeIndexMatchesConstOrder(t *testing.T) {
	if Audio.Index() != 0 {
		t.Errorf("Audio.Index() = %d, want 0", Audio.Index())
	}
	if Event.Index() != 1 {
		t.Errorf("Event.Index() = %d, want 1", Event.Index())
	}
}

func TestDefaultPortTypeNumTypes(t *testing.T) {
	if Audio.NumTypes() != 2 {
		t.Errorf("NumTypes() = %d, want 2", Audio.NumTypes())
	}
}

func TestDefaultPortTypeString(t *testing.T) {
	cases := map[DefaultPortType]string{
		Audio:               "Audio",
		Event:                "Event",
		DefaultPortType(99): "Unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}

func assertPortType[T PortType]() {}

var _ = assertPortType[DefaultPortType] // compile-time capability check
