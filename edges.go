package ksignal

import (
	"fmt"
	"strings"
)

// Connect makes target a target of source.
//
// Connecting a pair that is already linked is idempotent. Connecting a
// target that is fed by another source returns ErrSourceConflict (or is a
// logged no-op under WithLenientSources), and connecting a target that sits
// upstream of source returns ErrCycleDetected. If either side is dead,
// Connect silently does nothing.
//
// When source is eager and this is its first target, source is resumed. A
// sticky source replays its remembered value to target.
func Connect(source, target *Signal) error {
	if source.g != target.g {
		return fmt.Errorf("%w: %s -> %s", ErrForeignSignal, source, target)
	}
	return source.g.connect(source, target)
}

// MustConnect is like Connect but panics on error.
func MustConnect(source, target *Signal) {
	must(Connect(source, target))
}

// Pipe connects t as a target of s and returns t.
func (s *Signal) Pipe(t *Signal) *Signal {
	MustConnect(s, t)
	return t
}

// Disconnect detaches s from its source. A source left without targets
// disconnects from its own source in turn.
func (s *Signal) Disconnect() *Signal {
	s.g.disconnect(s)
	return s
}

// DependOn registers dependant as a dependant of root: ending root ends
// dependant. Registering an existing pair is idempotent. If root is already
// dead, dependant is ended immediately.
func DependOn(dependant, root *Signal) {
	dependant.g.dependOn(dependant, root)
}

// Undepend removes the dependency of dependant on root.
func Undepend(dependant, root *Signal) {
	dependant.roots = removeSignal(dependant.roots, root)
	root.dependants = removeSignal(root.dependants, dependant)
}

// DependOn is the method form of DependOn. It returns s.
func (s *Signal) DependOn(root *Signal) *Signal {
	DependOn(s, root)
	return s
}

// Undepend is the method form of Undepend. It returns s.
func (s *Signal) Undepend(root *Signal) *Signal {
	Undepend(s, root)
	return s
}

func (g *Graph) connect(source, target *Signal) error {
	if source.dead() || target.dead() {
		return nil
	}
	if target.state == StateConnected && target.source != source {
		if g.lenient {
			g.log.V(1).Info("ignoring second source", "target", target.String(), "source", source.String(), "current", target.source.String())
			return nil
		}
		return fmt.Errorf("%w: %s is fed by %s, cannot attach %s", ErrSourceConflict, target, target.source, source)
	}
	if path := upstreamPath(source, target); path != nil {
		return fmt.Errorf("%w: %s", ErrCycleDetected, path)
	}

	source.targets = removeSignal(source.targets, target)
	first := len(source.targets) == 0
	target.source = source
	target.state = StateConnected
	source.targets = append(source.targets, target)
	g.emit(Event{Kind: EventConnect, Node: target.id, Name: target.name, Peer: source.id})

	if source.state == StateDisconnected && source.source != nil {
		g.reconnect(source)
	}

	flushed := false
	if first && source.eager && source.flow == FlowPaused {
		flushed = len(source.outBuffer) > 0
		g.resume(source)
	}
	// A paused source with pending values replays through its buffer instead.
	replay := source.flow == FlowActive || len(source.outBuffer) == 0
	if source.sticky && source.hasLast && !flushed && replay && !source.flushing {
		g.receive(target, source.last)
	}
	return nil
}

// upstreamPath returns the chain from target down to source when target is
// source itself or one of its ancestors, stale links included.
func upstreamPath(source, target *Signal) pathString {
	var path pathString
	for n := source; n != nil; n = n.source {
		path = append(pathString{n.String()}, path...)
		if n == target {
			return append(path, target.String())
		}
	}
	return nil
}

type pathString []string

func (p pathString) String() string {
	return strings.Join(p, " -> ")
}

func (g *Graph) disconnect(t *Signal) {
	if t.state != StateConnected {
		return
	}
	src := t.source
	src.targets = removeSignal(src.targets, t)
	t.state = StateDisconnected
	g.emit(Event{Kind: EventDisconnect, Node: t.id, Name: t.name, Peer: src.id})
	fire(t.onDisconnect)

	if len(src.targets) == 0 && !src.dead() {
		g.disconnect(src)
	}
}

func (g *Graph) reconnect(s *Signal) {
	for s.state == StateDisconnected && s.source != nil {
		src := s.source
		if src.dead() {
			s.source = nil
			return
		}
		first := len(src.targets) == 0
		src.targets = append(removeSignal(src.targets, s), s)
		s.state = StateConnected
		g.emit(Event{Kind: EventReconnect, Node: s.id, Name: s.name, Peer: src.id})
		fire(s.onReconnect)

		if first && src.eager && src.flow == FlowPaused {
			g.resume(src)
		}
		s = src
	}
}

func (g *Graph) dependOn(dependant, root *Signal) {
	if dependant == root || dependant.dead() {
		return
	}
	if root.dead() {
		if err := g.end(dependant, false); err != nil {
			g.log.Error(err, "teardown failed", "signal", dependant.String())
		}
		return
	}
	Undepend(dependant, root)
	dependant.roots = append(dependant.roots, root)
	root.dependants = append(root.dependants, dependant)
}
