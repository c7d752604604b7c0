// Package ksignal provides a push-based reactive dataflow graph.
//
// # Overview
//
// A Signal is a node in a Graph. Values put into a signal travel along flow
// edges to its targets, where each target's value handler decides what to do
// with them. Errors travel a separate channel along the same edges. Signals
// can be paused (values are buffered until Resume) and ended (a terminal,
// irreversible state that releases every edge, buffer and teardown callback).
//
//	g := ksignal.NewGraph()
//
//	src := g.FromSlice([]any{1, 2, 3, 4, 5, 6})
//	src.
//	    Filter(func(v any) bool { return v.(int)%2 == 0 }).
//	    Map(func(v any) any { return v.(int) * 10 }).
//	    Then(func(s *ksignal.Signal, v any, _ ...any) error {
//	        fmt.Println(v) // 20, 40, 60
//	        return nil
//	    })
//
// # Edges
//
// Flow edges link a source to a target. A target has at most one source;
// attaching a second one is a configuration error (ErrSourceConflict) unless
// the graph was built WithLenientSources. When a signal loses its last
// target it disconnects from its own source, releasing unused upstream
// producers. Gaining a target again walks the stale source chain back up and
// reconnects it.
//
// Dependency edges are teardown-only: ending a root ends all of its
// dependants, independent of flow direction. Generate captures every signal
// allocated by a factory as a dependant of the signal the factory returns.
//
// # Errors
//
// Raise invokes a signal's error handler. The default handler propagates the
// error to every target; a signal without targets and without a custom
// handler cannot deliver the error anywhere, and the graph's fatal handler is
// called with an *UnhandledError (by default it panics). A value handler that
// returns an error or panics raises the error at its own signal.
//
// # Thread Safety
//
// IMPORTANT: Graph and Signal are NOT safe for concurrent use. Delivery is
// synchronous and depth-first on the calling goroutine. Hosts that feed a
// graph from several goroutines serialize access with a Dispatcher.
package ksignal
