package ksignal

import (
	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// Graph is an arena of signals. It hands out NodeIDs, holds the shared
// configuration and tracks the dependency-capture scopes used by Generate.
//
// THREAD SAFETY: Graph is not safe for concurrent use. See Dispatcher.
type Graph struct {
	log      logr.Logger
	observer Observer
	fatal    func(error)
	lenient  bool

	lastID NodeID
	nodes  map[NodeID]*Signal

	// scopes is a stack; Generate pushes a scope and every signal created
	// while it is on top is recorded in it.
	scopes [][]*Signal
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		log:   logr.Discard(),
		nodes: make(map[NodeID]*Signal),
		fatal: func(err error) {
			panic(err)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// New creates an inert signal: disconnected, paused and eager unless opts
// say otherwise.
func (g *Graph) New(opts ...SignalOption) *Signal {
	g.lastID++
	s := &Signal{
		id:      g.lastID,
		g:       g,
		state:   StateDisconnected,
		flow:    FlowPaused,
		eager:   true,
		onValue: valueHandler{fn: relay},
	}
	for _, opt := range opts {
		opt(s)
	}
	g.nodes[s.id] = s
	if n := len(g.scopes); n > 0 {
		g.scopes[n-1] = append(g.scopes[n-1], s)
	}
	g.emit(Event{Kind: EventCreate, Node: s.id, Name: s.name})
	return s
}

// Of creates a signal holding a single value. The value is buffered until
// the signal gains a target.
func (g *Graph) Of(v any, opts ...SignalOption) *Signal {
	return g.New(opts...).Put(v)
}

// FromSlice creates a signal that puts each value of vs in order.
func (g *Graph) FromSlice(vs []any, opts ...SignalOption) *Signal {
	return g.New(opts...).PutEach(vs)
}

// Val creates a sticky signal holding v.
func (g *Graph) Val(v any) *Signal {
	return g.New(Sticky()).Put(v)
}

// Ensure returns v when it is a signal, and a one-shot signal holding v
// otherwise.
func (g *Graph) Ensure(v any) *Signal {
	if s, ok := v.(*Signal); ok {
		return s
	}
	return g.Of(v)
}

// EnsureSticky returns v when it is a sticky signal. Other signals are
// piped into a new sticky signal; plain values are wrapped with Val.
func (g *Graph) EnsureSticky(v any) *Signal {
	s, ok := v.(*Signal)
	if !ok {
		return g.Val(v)
	}
	if s.sticky {
		return s
	}
	return s.Pipe(g.New(Sticky()))
}

// Generate runs factory in a dependency-capture scope. Every signal created
// while factory runs, other than the one it returns, becomes a dependant of
// the returned signal, so ending the result tears down the whole sub-graph.
func (g *Graph) Generate(factory func() *Signal) *Signal {
	g.scopes = append(g.scopes, nil)
	var (
		out      *Signal
		captured []*Signal
	)
	func() {
		defer func() {
			n := len(g.scopes) - 1
			captured = g.scopes[n]
			g.scopes = g.scopes[:n]
		}()
		out = factory()
	}()

	if out == nil {
		return nil
	}
	// Signals from outside the scope stay out of the enclosing one.
	if n := len(g.scopes); n > 0 && slices.Contains(captured, out) && !slices.Contains(g.scopes[n-1], out) {
		g.scopes[n-1] = append(g.scopes[n-1], out)
	}
	for _, s := range captured {
		if s != out {
			g.dependOn(s, out)
		}
	}
	return out
}

// Lookup returns the live signal with the given id.
func (g *Graph) Lookup(id NodeID) (*Signal, bool) {
	s, ok := g.nodes[id]
	return s, ok
}

// Len returns the number of live signals.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Close kills every live signal in creation order. Panics recovered from
// teardown callbacks are returned combined.
func (g *Graph) Close() error {
	var err error
	for _, id := range g.liveIDs() {
		if s, ok := g.nodes[id]; ok {
			err = multierr.Append(err, g.end(s, false))
		}
	}
	return err
}

func (g *Graph) liveIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (g *Graph) emit(e Event) {
	if g.observer != nil {
		g.observer.HandleEvent(e)
	}
}
