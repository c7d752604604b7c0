package ksignal

import (
	"go.uber.org/multierr"
)

// End terminates s. In order it notifies disconnect listeners, detaches s
// from its source, ends its targets and dependants, runs the teardown
// callbacks and marks s dead. End is idempotent.
//
// A signal that is paused, has no targets and still buffers values (a
// literal that nothing consumed yet, or a Limit whose output is not wired
// yet) stops accepting values and ends once those values have been flushed
// to its first target. Use Kill to discard them.
func (s *Signal) End() *Signal {
	s.g.finish(s)
	return s
}

// Kill terminates s immediately, discarding buffered values. Targets and
// dependants are killed as well.
func (s *Signal) Kill() *Signal {
	if err := s.g.end(s, false); err != nil {
		s.g.log.Error(err, "teardown failed", "signal", s.String())
	}
	return s
}

// Closing reports whether s has been ended and is only waiting to flush its
// buffered values.
func (s *Signal) Closing() bool {
	return s.closing && !s.dead()
}

// Teardown registers fn to run with args when s ends. On a dead signal fn
// runs immediately.
func (s *Signal) Teardown(fn TeardownFunc, args ...any) *Signal {
	td := teardown{fn: fn, args: args}
	if s.state == StateDead {
		if err := s.g.runTeardown(s, td); err != nil {
			s.g.log.Error(err, "teardown failed", "signal", s.String())
		}
		return s
	}
	s.teardowns = append(s.teardowns, td)
	return s
}

func (s *Signal) awaitsDrain() bool {
	return s.flow == FlowPaused && len(s.targets) == 0 && len(s.outBuffer) > 0
}

func (g *Graph) finish(s *Signal) {
	if s.dead() || s.closing {
		return
	}
	if s.awaitsDrain() {
		s.closing = true
		return
	}
	g.endAndLog(s)
}

func (g *Graph) endAndLog(s *Signal) {
	if err := g.end(s, true); err != nil {
		g.log.Error(err, "teardown failed", "signal", s.String())
	}
}

// end uses the ending flag as its visited set, so cascades through cyclic
// dependency edges terminate. A graceful end lets targets that still buffer
// output drain first; dependants are always ended at once.
func (g *Graph) end(s *Signal, graceful bool) error {
	if s.dead() {
		return nil
	}
	s.ending = true
	fire(s.onDisconnect)

	if s.state == StateConnected {
		src := s.source
		src.targets = removeSignal(src.targets, s)
		g.emit(Event{Kind: EventDisconnect, Node: s.id, Name: s.name, Peer: src.id})
		if len(src.targets) == 0 && !src.dead() {
			g.disconnect(src)
		}
	}
	s.source = nil

	var err error
	targets := s.targets
	s.targets = nil
	for _, t := range targets {
		if t.source == s {
			t.source = nil
			if t.state == StateConnected {
				t.state = StateDisconnected
			}
		}
		if graceful && t.awaitsDrain() {
			t.closing = true
			continue
		}
		err = multierr.Append(err, g.end(t, graceful))
	}

	dependants := s.dependants
	s.dependants = nil
	for _, d := range dependants {
		d.roots = removeSignal(d.roots, s)
		err = multierr.Append(err, g.end(d, false))
	}
	for _, r := range s.roots {
		r.dependants = removeSignal(r.dependants, s)
	}
	s.roots = nil

	s.inBuffer, s.outBuffer = nil, nil
	s.last, s.hasLast = nil, false

	// Callbacks registered by other callbacks still run.
	for i := 0; i < len(s.teardowns); i++ {
		err = multierr.Append(err, g.runTeardown(s, s.teardowns[i]))
	}
	s.teardowns = nil

	s.state = StateDead
	s.onDisconnect, s.onReconnect = nil, nil
	delete(g.nodes, s.id)
	g.emit(Event{Kind: EventEnd, Node: s.id, Name: s.name})
	g.log.V(1).Info("signal ended", "signal", s.String())
	return err
}

func (g *Graph) runTeardown(s *Signal, td teardown) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = g.recovered(s, r)
		}
	}()
	td.fn(td.args...)
	return nil
}
