package kchan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/ksignal"
)

var errBoom = errors.New("boom")

func drain(ch <-chan Item) []Item {
	var out []Item
	for it := range ch {
		out = append(out, it)
	}
	return out
}

func TestTap(t *testing.T) {
	t.Run("drop newest keeps the first items", func(t *testing.T) {
		g := ksignal.NewGraph()
		src := g.New()
		tap := NewTap(src, WithBuffer(1))

		src.PutEach([]any{1, 2, 3})
		tap.Close()

		assert.Equal(t, []Item{{Value: 1}}, drain(tap.Items()))
		assert.Equal(t, uint64(2), tap.Drops())
	})

	t.Run("drop oldest keeps the latest item", func(t *testing.T) {
		g := ksignal.NewGraph()
		src := g.New()
		tap := NewTap(src, WithBuffer(1), WithOverflowPolicy(DropOldest))

		src.PutEach([]any{1, 2, 3})
		tap.Close()

		assert.Equal(t, []Item{{Value: 3}}, drain(tap.Items()))
		assert.Equal(t, uint64(2), tap.Drops())
	})

	t.Run("block waits for the consumer", func(t *testing.T) {
		g := ksignal.NewGraph()
		src := g.New()
		tap := NewTap(src, WithBuffer(0), WithOverflowPolicy(Block))

		got := make(chan []Item)
		go func() {
			got <- drain(tap.Items())
		}()

		src.PutEach([]any{"a", "b"})
		src.Raise(errBoom)
		tap.Close()

		assert.Equal(t, []Item{{Value: "a"}, {Value: "b"}, {Err: errBoom}}, <-got)
		assert.Equal(t, uint64(0), tap.Drops())
	})

	t.Run("channel closes when the source ends", func(t *testing.T) {
		g := ksignal.NewGraph()
		src := g.FromSlice([]any{1, 2})
		tap := NewTap(src)
		src.End()

		assert.Equal(t, []Item{{Value: 1}, {Value: 2}}, drain(tap.Items()))
		assert.True(t, tap.Signal().Dead())
	})

	t.Run("close leaves the source alive", func(t *testing.T) {
		g := ksignal.NewGraph()
		src := g.New()
		tap := NewTap(src)
		tap.Close()

		_, open := <-tap.Items()
		assert.False(t, open)
		assert.False(t, src.Dead())
		assert.Equal(t, 0, len(src.Targets()))
	})

	t.Run("tapping a dead signal gives a closed channel", func(t *testing.T) {
		g := ksignal.NewGraph()
		src := g.New().End()
		tap := NewTap(src)

		select {
		case _, open := <-tap.Items():
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("tap channel of a dead signal was not closed")
		}
		assert.True(t, tap.Signal().Dead())
		tap.Close()
	})
}

func TestFeed(t *testing.T) {
	g := ksignal.NewGraph()
	d := ksignal.NewDispatcher(g)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = d.Run(ctx)
	}()

	var (
		target *ksignal.Signal
		values []any
		errs   []error
	)
	assert.NoError(t, d.Do(ctx, func(g *ksignal.Graph) error {
		target = g.New()
		target.Pipe(g.New(
			ksignal.OnValue(func(_ *ksignal.Signal, v any, _ ...any) error {
				values = append(values, v)
				return nil
			}),
			ksignal.OnError(func(_ *ksignal.Signal, err error, _ ...any) error {
				errs = append(errs, err)
				return nil
			}),
		))
		return nil
	}))

	ch := make(chan any, 4)
	ch <- 1
	ch <- Item{Value: 2}
	ch <- Item{Err: errBoom}
	close(ch)

	assert.NoError(t, Feed[any](ctx, d, ch, target, WithEndOnClose()))

	var dead bool
	assert.NoError(t, d.Do(ctx, func(*ksignal.Graph) error {
		dead = target.Dead()
		return nil
	}))
	assert.Equal(t, []any{1, 2}, values)
	assert.Equal(t, []error{errBoom}, errs)
	assert.True(t, dead)

	t.Run("returns on cancel", func(t *testing.T) {
		cctx, ccancel := context.WithCancel(context.Background())
		ccancel()
		err := Feed[int](cctx, d, make(chan int), target)
		assert.IsError(t, err, context.Canceled)
	})
}
