package ksignal

import (
	"log/slog"

	"github.com/go-logr/logr"
)

// Option is a function that configures a Graph
type Option func(*Graph)

// WithLogr sets the logger for the graph
var WithLogr = func(log logr.Logger) Option {
	return func(g *Graph) {
		g.log = log
	}
}

// WithSlog sets a slog logger for the graph
var WithSlog = func(log *slog.Logger) Option {
	return func(g *Graph) {
		g.log = logr.FromSlogHandler(log.Handler())
	}
}

// WithObserver registers an observer that receives every graph event
var WithObserver = func(o Observer) Option {
	return func(g *Graph) {
		g.observer = o
	}
}

// WithFatalHandler replaces the default fatal handler, which panics with the
// *UnhandledError it receives.
var WithFatalHandler = func(fn func(error)) Option {
	return func(g *Graph) {
		g.fatal = fn
	}
}

// WithLenientSources makes attaching a second source to a connected signal a
// logged no-op instead of an ErrSourceConflict.
var WithLenientSources = func() Option {
	return func(g *Graph) {
		g.lenient = true
	}
}

// SignalOption configures a Signal at construction.
type SignalOption func(*Signal)

// Sticky makes a signal remember its most recent value and replay it to
// targets that connect later.
func Sticky() SignalOption {
	return func(s *Signal) {
		s.sticky = true
	}
}

// Lazy keeps a signal paused when it gains its first target. A lazy signal
// only delivers after an explicit Resume.
func Lazy() SignalOption {
	return func(s *Signal) {
		s.eager = false
	}
}

// Named sets a name used in logs, events and topology descriptions.
func Named(name string) SignalOption {
	return func(s *Signal) {
		s.name = name
	}
}

// OnValue installs the value handler. args are appended to every call.
func OnValue(fn ValueFunc, args ...any) SignalOption {
	return func(s *Signal) {
		s.onValue = valueHandler{fn: fn, args: args}
	}
}

// OnError installs a custom error handler. args are appended to every call.
func OnError(fn ErrorFunc, args ...any) SignalOption {
	return func(s *Signal) {
		s.onError = &errorHandler{fn: fn, args: args}
	}
}
