package ksignal

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// NodeID identifies a signal within its graph. IDs start at 1 and are never
// reused; the zero NodeID means "no signal".
type NodeID uint64

// State is the connection state of a signal.
type State uint8

const (
	StateDisconnected State = iota
	StateConnected
	StateDead
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Flow governs whether values put into a signal are delivered immediately or
// buffered.
type Flow uint8

const (
	FlowPaused Flow = iota
	FlowActive
)

func (f Flow) String() string {
	switch f {
	case FlowPaused:
		return "paused"
	case FlowActive:
		return "active"
	default:
		return "unknown"
	}
}

// ValueFunc handles a value arriving at signal s. The handler usually puts
// something into s to forward it; returning an error raises it at s.
type ValueFunc func(s *Signal, v any, args ...any) error

// ErrorFunc handles an error arriving at signal s. Returning nil swallows the
// error; returning an error (the same one or another) propagates it to the
// targets of s.
type ErrorFunc func(s *Signal, err error, args ...any) error

// TeardownFunc runs once when a signal ends.
type TeardownFunc func(args ...any)

type valueHandler struct {
	fn   ValueFunc
	args []any
}

type errorHandler struct {
	fn   ErrorFunc
	args []any
}

type teardown struct {
	fn   TeardownFunc
	args []any
}

type listener struct {
	id uint64
	fn func()
}

// Signal is a node in a Graph.
type Signal struct {
	id   NodeID
	name string
	g    *Graph

	state  State
	flow   Flow
	sticky bool
	eager  bool

	last    any
	hasLast bool

	// inBuffer holds deliveries that arrived while the value handler was
	// running; outBuffer holds values put while paused or flushing.
	inBuffer  []any
	outBuffer []any
	busy      bool
	flushing  bool
	ending    bool
	closing   bool

	// source is kept after a disconnect so the chain can be reattached.
	source  *Signal
	targets []*Signal

	roots      []*Signal
	dependants []*Signal

	onValue   valueHandler
	onError   *errorHandler
	teardowns []teardown

	nextListener uint64
	onDisconnect []listener
	onReconnect  []listener
}

// relay is the default value handler: forward the value unchanged.
func relay(s *Signal, v any, _ ...any) error {
	s.Put(v)
	return nil
}

// ID returns the identifier of s within its graph.
func (s *Signal) ID() NodeID { return s.id }

// Name returns the name set with Named, if any.
func (s *Signal) Name() string { return s.name }

// Graph returns the graph s belongs to.
func (s *Signal) Graph() *Graph { return s.g }

// State returns the connection state of s.
func (s *Signal) State() State { return s.state }

// Flow reports whether s is paused or active.
func (s *Signal) Flow() Flow { return s.flow }

// Sticky reports whether s replays its last value to new targets.
func (s *Signal) Sticky() bool { return s.sticky }

// Eager reports whether s resumes when it gains its first target.
func (s *Signal) Eager() bool { return s.eager }

// Dead reports whether s has ended.
func (s *Signal) Dead() bool { return s.state == StateDead }

// Last returns the remembered value of a sticky signal.
func (s *Signal) Last() (any, bool) { return s.last, s.hasLast }

// Source returns the signal feeding s, or nil when s is not connected.
func (s *Signal) Source() *Signal {
	if s.state != StateConnected {
		return nil
	}
	return s.source
}

// Targets returns a copy of the targets of s in registration order.
func (s *Signal) Targets() []*Signal {
	return slices.Clone(s.targets)
}

// Buffered returns the number of values waiting in the output buffer.
func (s *Signal) Buffered() int { return len(s.outBuffer) }

func (s *Signal) String() string {
	return nodeLabel(s.id, s.name)
}

// dead also covers a signal in the middle of ending: it accepts no more
// deliveries and no new edges.
func (s *Signal) dead() bool {
	return s.state == StateDead || s.ending
}

func (s *Signal) listen(list *[]listener, fn func()) func() {
	s.nextListener++
	id := s.nextListener
	*list = append(*list, listener{id: id, fn: fn})
	return func() {
		i := slices.IndexFunc(*list, func(l listener) bool { return l.id == id })
		if i >= 0 {
			*list = slices.Delete(*list, i, i+1)
		}
	}
}

// OnDisconnect registers fn to run whenever s is disconnected from its source
// or starts ending. The returned func unregisters it.
func (s *Signal) OnDisconnect(fn func()) (cancel func()) {
	return s.listen(&s.onDisconnect, fn)
}

// OnReconnect registers fn to run whenever s is reattached to its stale
// source. The returned func unregisters it.
func (s *Signal) OnReconnect(fn func()) (cancel func()) {
	return s.listen(&s.onReconnect, fn)
}

func fire(list []listener) {
	for _, l := range slices.Clone(list) {
		l.fn()
	}
}

func nodeLabel(id NodeID, name string) string {
	if name != "" {
		return fmt.Sprintf("%s#%d", name, id)
	}
	return fmt.Sprintf("signal#%d", id)
}

func removeSignal(list []*Signal, s *Signal) []*Signal {
	i := slices.Index(list, s)
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}
