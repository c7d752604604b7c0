package ksignal

// EventKind classifies graph events.
type EventKind uint8

const (
	EventCreate EventKind = iota
	EventConnect
	EventDisconnect
	EventReconnect
	EventPut
	EventRaise
	EventEnd
	EventFatal
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventReconnect:
		return "reconnect"
	case EventPut:
		return "put"
	case EventRaise:
		return "raise"
	case EventEnd:
		return "end"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Event describes one change in a graph. Peer is the other end of an edge
// for connect, disconnect and reconnect events.
type Event struct {
	Kind EventKind
	Node NodeID
	Name string
	Peer NodeID
	Err  error
}

// Observer receives graph events synchronously, on the goroutine that caused
// them. Implementations must not block.
type Observer interface {
	HandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) HandleEvent(e Event) {
	f(e)
}
