package kchan

import (
	"context"

	"github.com/birdayz/ksignal"
)

// Feed puts every value received from ch into target, going through d so the
// graph is only touched on its own goroutine. An Item carrying an error is
// raised instead. Feed returns when ch is closed (nil) or ctx is done
// (ctx.Err()).
func Feed[T any](ctx context.Context, d *ksignal.Dispatcher, ch <-chan T, target *ksignal.Signal, opts ...FeedOption) error {
	var c feedConfig
	for _, opt := range opts {
		opt(&c)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-ch:
			if !ok {
				if !c.endOnClose {
					return nil
				}
				return d.Do(ctx, func(*ksignal.Graph) error {
					target.End()
					return nil
				})
			}
			if err := d.Post(ctx, func(*ksignal.Graph) error {
				deliver(target, v)
				return nil
			}); err != nil {
				return err
			}
		}
	}
}

func deliver(target *ksignal.Signal, v any) {
	if it, ok := v.(Item); ok {
		if it.Err != nil {
			target.Raise(it.Err)
			return
		}
		v = it.Value
	}
	target.Put(v)
}
