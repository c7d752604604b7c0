package ksignal

import (
	"context"
	"fmt"
	"sync"
)

const defaultInboxSize = 256

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithInboxSize sets how many posted functions may queue before Do and Post
// block.
func WithInboxSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.inboxSize = n
		}
	}
}

type task struct {
	fn     func(*Graph) error
	result chan error
}

// Dispatcher serializes access to a Graph. Functions passed to Do and Post
// run one at a time on the goroutine executing Run, so producers on other
// goroutines never touch the graph directly.
type Dispatcher struct {
	g         *Graph
	inbox     chan task
	inboxSize int
	done      chan struct{}
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher for g. Nothing runs until Run is
// called.
func NewDispatcher(g *Graph, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		g:         g,
		inboxSize: defaultInboxSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.inbox = make(chan task, d.inboxSize)
	return d
}

// Graph returns the graph the dispatcher serializes.
func (d *Dispatcher) Graph() *Graph {
	return d.g
}

// Run executes queued functions until ctx is done or Close is called. It
// returns ctx.Err() on cancellation and nil after Close.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.done:
			return nil
		case t := <-d.inbox:
			err := d.exec(t.fn)
			if t.result != nil {
				t.result <- err
			} else if err != nil {
				d.g.log.Error(err, "posted function failed")
			}
		}
	}
}

// Do runs fn on the dispatcher goroutine and waits for it. A panic in fn,
// including an unhandled signal error, is returned as an error.
func (d *Dispatcher) Do(ctx context.Context, fn func(*Graph) error) error {
	res := make(chan error, 1)
	if err := d.enqueue(ctx, task{fn: fn, result: res}); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherClosed
	}
}

// Post queues fn without waiting for it to run. Errors returned by fn are
// logged.
func (d *Dispatcher) Post(ctx context.Context, fn func(*Graph) error) error {
	return d.enqueue(ctx, task{fn: fn})
}

// Close stops Run. Queued functions that have not started are dropped.
// Close is safe to call multiple times.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, t task) error {
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}
	select {
	case d.inbox <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherClosed
	}
}

func (d *Dispatcher) exec(fn func(*Graph) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("ksignal: dispatched function panicked: %v", r)
		}
	}()
	return fn(d.g)
}
