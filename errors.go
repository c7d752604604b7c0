package ksignal

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration failures.
var (
	ErrSourceConflict    = errors.New("signal already has a source")
	ErrCycleDetected     = errors.New("cycle detected")
	ErrForeignSignal     = errors.New("signal belongs to another graph")
	ErrInvalidCollection = errors.New("invalid collection")
	ErrDispatcherClosed  = errors.New("dispatcher closed")
)

// UnhandledError is passed to the fatal handler when an error reaches a
// signal that has neither targets nor a custom error handler.
type UnhandledError struct {
	Node NodeID
	Name string
	Err  error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("ksignal: unhandled error at %s: %v", nodeLabel(e.Node, e.Name), e.Err)
}

func (e *UnhandledError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking handler or teardown
// callback.
type PanicError struct {
	Node  NodeID
	Name  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("ksignal: panic in %s: %v", nodeLabel(e.Node, e.Name), e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
