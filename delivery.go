package ksignal

import (
	"golang.org/x/exp/slices"
)

// Put delivers v to every current target of s, or buffers it while s is
// paused. A sticky signal remembers v. Put on a dead or closing signal is
// discarded.
func (s *Signal) Put(v any) *Signal {
	s.g.put(s, v)
	return s
}

// PutEach puts every value of vs in order.
func (s *Signal) PutEach(vs []any) *Signal {
	for _, v := range vs {
		s.g.put(s, v)
	}
	return s
}

// Raise invokes the error handler of s with err.
func (s *Signal) Raise(err error) *Signal {
	s.g.raise(s, err)
	return s
}

// Resolve puts v and ends s.
func (s *Signal) Resolve(v any) *Signal {
	s.g.put(s, v)
	return s.End()
}

// Pause makes s buffer values instead of delivering them.
func (s *Signal) Pause() *Signal {
	if !s.dead() {
		s.flow = FlowPaused
	}
	return s
}

// Resume makes s active and flushes its buffered values in FIFO order before
// any value put afterwards.
func (s *Signal) Resume() *Signal {
	s.g.resume(s)
	return s
}

func (g *Graph) put(s *Signal, v any) {
	if s.dead() || s.closing {
		return
	}
	if s.sticky {
		s.last, s.hasLast = v, true
	}
	if s.flow == FlowPaused || s.flushing {
		s.outBuffer = append(s.outBuffer, v)
		return
	}
	g.deliver(s, v)
}

// deliver walks a snapshot of the targets so edges added or removed by a
// handler only take effect from the next delivery.
func (g *Graph) deliver(s *Signal, v any) {
	g.emit(Event{Kind: EventPut, Node: s.id, Name: s.name})
	for _, t := range slices.Clone(s.targets) {
		if s.dead() {
			return
		}
		g.receive(t, v)
	}
}

func (g *Graph) resume(s *Signal) {
	if s.dead() {
		return
	}
	s.flow = FlowActive
	if s.flushing {
		return
	}

	s.flushing = true
	defer func() {
		s.flushing = false
	}()
	for len(s.outBuffer) > 0 && s.flow == FlowActive && !s.dead() {
		v := s.outBuffer[0]
		s.outBuffer = s.outBuffer[1:]
		g.deliver(s, v)
	}
	if len(s.outBuffer) == 0 {
		s.outBuffer = nil
		if s.closing && !s.dead() {
			g.endAndLog(s)
		}
	}
}

// receive runs the value handler of t. Deliveries arriving while the handler
// is still running queue in the input buffer and are handled in order once
// it returns.
func (g *Graph) receive(t *Signal, v any) {
	if t.dead() {
		return
	}
	if t.busy {
		t.inBuffer = append(t.inBuffer, v)
		return
	}

	t.busy = true
	defer func() {
		if t.busy {
			t.busy = false
			t.inBuffer = nil
		}
	}()
	g.handle(t, v)
	for len(t.inBuffer) > 0 && !t.dead() {
		next := t.inBuffer[0]
		t.inBuffer = t.inBuffer[1:]
		g.handle(t, next)
	}
	t.inBuffer = nil
	t.busy = false
}

func (g *Graph) handle(t *Signal, v any) {
	if err := g.callValue(t, v); err != nil {
		g.raise(t, err)
	}
}

func (g *Graph) callValue(t *Signal, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = g.recovered(t, r)
		}
	}()
	h := t.onValue
	return h.fn(t, v, h.args...)
}

func (g *Graph) raise(s *Signal, err error) {
	if s.dead() || err == nil {
		return
	}
	g.emit(Event{Kind: EventRaise, Node: s.id, Name: s.name, Err: err})
	if s.onError == nil {
		g.propagate(s, err)
		return
	}
	if perr := g.callError(s, err); perr != nil {
		g.propagate(s, perr)
	}
}

// callError runs the custom error handler of s. A panic is converted into
// the error to propagate; the handler itself is never re-entered for it.
func (g *Graph) callError(s *Signal, err error) (perr error) {
	defer func() {
		if r := recover(); r != nil {
			perr = g.recovered(s, r)
		}
	}()
	h := s.onError
	return h.fn(s, err, h.args...)
}

func (g *Graph) propagate(s *Signal, err error) {
	if s.dead() {
		return
	}
	if len(s.targets) == 0 {
		g.fail(s, err)
		return
	}
	for _, t := range slices.Clone(s.targets) {
		if s.dead() {
			return
		}
		g.raise(t, err)
	}
}

func (g *Graph) fail(s *Signal, err error) {
	ue := &UnhandledError{Node: s.id, Name: s.name, Err: err}
	g.emit(Event{Kind: EventFatal, Node: s.id, Name: s.name, Err: err})
	g.log.Error(err, "unhandled signal error", "signal", s.String())
	g.fatal(ue)
}

// recovered turns a recovered panic into an error. An *UnhandledError is a
// fatal fault, not a handler fault, and keeps unwinding.
func (g *Graph) recovered(s *Signal, r any) error {
	if ue, ok := r.(*UnhandledError); ok {
		panic(ue)
	}
	return &PanicError{Node: s.id, Name: s.name, Value: r}
}
