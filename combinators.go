package ksignal

import (
	"reflect"
)

// Then creates a target of s whose value handler is h. args are appended to
// every call of h.
//
// Example:
//
//	s.Then(func(t *ksignal.Signal, v any, args ...any) error {
//	    t.Put(fmt.Sprint(args[0], v))
//	    return nil
//	}, "prefix:")
func (s *Signal) Then(h ValueFunc, args ...any) *Signal {
	return s.Pipe(s.g.New(OnValue(h, args...)))
}

// Except creates a target of s that relays values unchanged and handles
// errors with h. h returns nil to stop the error or an error to pass on.
//
// Example:
//
//	s.Except(func(t *ksignal.Signal, err error, _ ...any) error {
//	    if errors.Is(err, io.EOF) {
//	        return nil
//	    }
//	    return err
//	})
func (s *Signal) Except(h ErrorFunc, args ...any) *Signal {
	return s.Pipe(s.g.New(OnError(h, args...)))
}

// Map creates a target of s that puts fn(v) for every value v.
func (s *Signal) Map(fn func(v any) any) *Signal {
	return s.Then(func(t *Signal, v any, _ ...any) error {
		t.Put(fn(v))
		return nil
	})
}

// Filter creates a target of s that only forwards values for which fn
// returns true.
func (s *Signal) Filter(fn func(v any) bool) *Signal {
	return s.Then(func(t *Signal, v any, _ ...any) error {
		if fn(v) {
			t.Put(v)
		}
		return nil
	})
}

// Limit creates a target of s that forwards the first n values and then
// ends. With n <= 0 it forwards nothing and ends on the first value.
func (s *Signal) Limit(n int) *Signal {
	count := 0
	return s.Then(func(t *Signal, v any, _ ...any) error {
		count++
		if count <= n {
			t.Put(v)
		}
		if count >= n {
			t.End()
		}
		return nil
	})
}

// Once is Limit(1).
func (s *Signal) Once() *Signal {
	return s.Limit(1)
}

// ThenOnce maps the first value of s with fn and then ends.
func (s *Signal) ThenOnce(fn func(v any) any) *Signal {
	return s.Once().Map(fn)
}

// Flatten creates a target of s that puts every leaf of nested slice and
// array values individually, depth first. Byte slices are leaves.
func (s *Signal) Flatten() *Signal {
	return s.Then(func(t *Signal, v any, _ ...any) error {
		flatten(t, v)
		return nil
	})
}

func flatten(t *Signal, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		for i := 0; i < rv.Len(); i++ {
			flatten(t, rv.Index(i).Interface())
		}
		return
	}
	t.Put(v)
}

// Update creates a signal that follows the signals returned by fn. Each
// signal returned for a value of s ends the previously followed one before
// its values and errors are redirected into the result. Non-signal and nil
// returns are ignored.
func (s *Signal) Update(fn func(v any) any) *Signal {
	return s.substitute(fn, true)
}

// Append is like Update but keeps every previously returned signal
// attached, merging all of them into the result.
func (s *Signal) Append(fn func(v any) any) *Signal {
	return s.substitute(fn, false)
}

func (s *Signal) substitute(fn func(v any) any, replace bool) *Signal {
	g := s.g
	var current *Signal
	return g.Generate(func() *Signal {
		out := g.New()
		driver := s.Then(func(_ *Signal, v any, _ ...any) error {
			sub, ok := fn(v).(*Signal)
			if !ok || sub == nil || sub == current {
				return nil
			}
			if replace && current != nil {
				current.End()
			}
			current = sub
			DependOn(sub, out)
			Redir(sub, out)
			return nil
		})
		// The driver is captured as a dependant of out; the reverse edge ends
		// out when s ends.
		DependOn(out, driver)
		return out
	})
}

// Redir forwards the values and errors of source into target through a new
// relay target of source, which is returned. The relay ends when target
// ends.
func Redir(source, target *Signal) *Signal {
	r := source.g.New(
		OnValue(func(_ *Signal, v any, _ ...any) error {
			target.Put(v)
			return nil
		}),
		OnError(func(_ *Signal, err error, _ ...any) error {
			target.Raise(err)
			return nil
		}),
	)
	if target.dead() {
		return r.End()
	}
	cancel := target.OnDisconnect(func() {
		if target.dead() {
			r.End()
		}
	})
	r.Teardown(func(...any) {
		cancel()
	})
	return source.Pipe(r)
}

// To redirects the values and errors of s into target and returns target.
func (s *Signal) To(target *Signal) *Signal {
	Redir(s, target)
	return target
}
