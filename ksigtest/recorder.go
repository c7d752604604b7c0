// Package ksigtest provides helpers for testing signal graphs.
package ksigtest

import (
	"sync"

	"github.com/birdayz/ksignal"
	"golang.org/x/exp/slices"
)

// Recorder records the values and errors reaching a signal.
//
// Recorder is safe to read from other goroutines while the graph runs.
type Recorder struct {
	sig    *ksignal.Signal
	mu     sync.Mutex
	values []any
	errs   []error
}

// Record attaches a recorder to s. Errors are recorded and swallowed.
func Record(s *ksignal.Signal) *Recorder {
	r := &Recorder{}
	r.sig = s.Pipe(s.Graph().New(
		ksignal.Named("recorder"),
		ksignal.OnValue(func(_ *ksignal.Signal, v any, _ ...any) error {
			r.mu.Lock()
			r.values = append(r.values, v)
			r.mu.Unlock()
			return nil
		}),
		ksignal.OnError(func(_ *ksignal.Signal, err error, _ ...any) error {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
			return nil
		}),
	))
	return r
}

// Signal returns the recording signal.
func (r *Recorder) Signal() *ksignal.Signal {
	return r.sig
}

// Values returns a snapshot copy of recorded values.
func (r *Recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.values)
}

// Errors returns a snapshot copy of recorded errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.values, r.errs = nil, nil
	r.mu.Unlock()
}

// EventRecorder records graph events.
//
// EventRecorder is safe under concurrent HandleEvent calls.
type EventRecorder struct {
	mu     sync.Mutex
	events []ksignal.Event
}

// HandleEvent appends the event to the recorder.
func (r *EventRecorder) HandleEvent(e ksignal.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a snapshot copy of recorded events.
func (r *EventRecorder) Events() []ksignal.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Kinds returns the kinds of the recorded events of node id, in order. A zero
// id selects every event.
func (r *EventRecorder) Kinds(id ksignal.NodeID) []ksignal.EventKind {
	var out []ksignal.EventKind
	for _, e := range r.Events() {
		if id == 0 || e.Node == id {
			out = append(out, e.Kind)
		}
	}
	return out
}

// Reset clears the recorder.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
