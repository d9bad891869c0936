package journal

// Kind classifies an entry. A task may only move from TaskOpen to TaskDone.
type Kind int

const (
	Note Kind = iota
	TaskOpen
	TaskDone
)

var markers = [...]byte{
	Note:     '*',
	TaskOpen: '-',
	TaskDone: 'x',
}

// Marker returns the single-character form written in front of the entry text.
func (k Kind) Marker() byte {
	return markers[k]
}

// KindFromMarker is the inverse of Marker.
func KindFromMarker(m byte) (Kind, bool) {
	for k, c := range markers {
		if c == m {
			return Kind(k), true
		}
	}
	return 0, false
}

// String returns the name used in JSON views and logs.
func (k Kind) String() string {
	switch k {
	case Note:
		return "note"
	case TaskOpen:
		return "task"
	case TaskDone:
		return "done"
	}
	return "unknown"
}

// ParseKind is the inverse of String.
func ParseKind(name string) (Kind, bool) {
	for k := range markers {
		if Kind(k).String() == name {
			return Kind(k), true
		}
	}
	return 0, false
}
