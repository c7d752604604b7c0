// Package kchan moves values between signal graphs and Go channels.
package kchan

import (
	"fmt"
	"sync/atomic"

	"github.com/birdayz/ksignal"
)

// Item is a value or an error that reached a Tap.
type Item struct {
	Value any
	Err   error
}

// Tap forwards what reaches a signal into a channel. The channel is closed
// when the tap signal ends, either because the tapped chain ended or because
// of Close.
type Tap struct {
	sig     *ksignal.Signal
	items   chan Item
	policy  OverflowPolicy
	dropped atomic.Uint64
}

// NewTap attaches a tap to s. It must be called on the goroutine that owns
// the graph.
//
// Defaults:
//   - Buffer: 64
//   - OverflowPolicy: DropNewest
func NewTap(s *ksignal.Signal, opts ...Option) *Tap {
	c := config{
		buffer: defaultBufferSize,
		policy: DropNewest,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.buffer < 0 {
		c.buffer = 0
	}

	t := &Tap{
		items:  make(chan Item, c.buffer),
		policy: c.policy,
	}
	if s.Dead() {
		t.sig = s.Graph().New(ksignal.Named("tap")).Kill()
		close(t.items)
		return t
	}
	t.sig = s.Pipe(s.Graph().New(
		ksignal.Named("tap"),
		ksignal.OnValue(func(_ *ksignal.Signal, v any, _ ...any) error {
			t.send(Item{Value: v})
			return nil
		}),
		ksignal.OnError(func(_ *ksignal.Signal, err error, _ ...any) error {
			t.send(Item{Err: err})
			return nil
		}),
	))
	t.sig.Teardown(func(...any) {
		close(t.items)
	})
	return t
}

// Items returns the channel of tapped values and errors.
func (t *Tap) Items() <-chan Item {
	return t.items
}

// Signal returns the signal the tap is attached through.
func (t *Tap) Signal() *ksignal.Signal {
	return t.sig
}

// Drops returns the number of items dropped because the channel was full.
func (t *Tap) Drops() uint64 {
	return t.dropped.Load()
}

// Close ends the tap signal, which closes the channel. Like NewTap it must
// run on the goroutine that owns the graph.
func (t *Tap) Close() {
	t.sig.End()
}

func (t *Tap) send(it Item) {
	switch t.policy {
	case Block:
		t.items <- it

	case DropNewest:
		select {
		case t.items <- it:
		default:
			t.dropped.Add(1)
		}

	case DropOldest:
		select {
		case t.items <- it:
			return
		default:
		}
		select {
		case <-t.items:
			t.dropped.Add(1)
		default:
		}
		select {
		case t.items <- it:
		default:
			t.dropped.Add(1)
		}

	default:
		panic(fmt.Errorf("unknown overflow policy: %v", t.policy))
	}
}
