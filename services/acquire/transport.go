package acquire

// EventKind distinguishes connection events.
type EventKind uint8

const (
	EventConnect EventKind = iota + 1
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	}
	return "unknown"
}

// Event is a connection change reported by the transport.
type Event struct {
	Kind EventKind
	Peer string // client address, when known
}

// Transport is the wireless link the loop publishes through.
type Transport interface {
	AttributeWriter

	// Start registers the service and its attributes and begins advertising.
	Start() error

	// Poll services the link and returns at most one pending connection
	// event. It must not block.
	Poll() (Event, bool)
}
