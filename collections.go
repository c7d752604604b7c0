package ksignal

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Keyed pairs a value with the key of the collection member that produced
// it. Keys are strings for map collections and ints for slice collections.
type Keyed struct {
	Value any
	Key   any
}

type member struct {
	key   any
	value any
}

// members lists the entries of a map[string]any or []any collection; map
// keys come sorted so subscription order is deterministic.
func members(coll any) ([]member, error) {
	switch c := coll.(type) {
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		ms := make([]member, len(keys))
		for i, k := range keys {
			ms[i] = member{key: k, value: c[k]}
		}
		return ms, nil
	case []any:
		ms := make([]member, len(c))
		for i, v := range c {
			ms[i] = member{key: i, value: v}
		}
		return ms, nil
	case []*Signal:
		ms := make([]member, len(c))
		for i, v := range c {
			ms[i] = member{key: i, value: v}
		}
		return ms, nil
	default:
		return nil, fmt.Errorf("%w: %T, expected map[string]any, []any or []*Signal", ErrInvalidCollection, coll)
	}
}

// Any creates a signal that puts a Keyed value every time a member signal
// of coll fires, in firing order. Members that are not signals are put once,
// up front. Ending the result detaches it from every member.
//
// coll is a map[string]any, []any or []*Signal; anything else panics with
// ErrInvalidCollection.
func (g *Graph) Any(coll any) *Signal {
	ms, err := members(coll)
	must(err)
	return g.anyOf(ms)
}

func (g *Graph) anyOf(ms []member) *Signal {
	return g.Generate(func() *Signal {
		out := g.New()
		for _, m := range ms {
			src, ok := m.value.(*Signal)
			if !ok {
				out.Put(Keyed{Value: m.value, Key: m.key})
				continue
			}
			key := m.key
			Redir(src.Map(func(v any) any {
				return Keyed{Value: v, Key: key}
			}), out)
		}
		return out
	})
}

// All creates a signal that puts a snapshot of coll, with every member
// signal replaced by its latest value, each time a member fires. Nothing is
// put until every member signal has fired at least once. Each snapshot is a
// fresh copy of the same collection type.
func (g *Graph) All(coll any) *Signal {
	ms, err := members(coll)
	must(err)

	var (
		signals []member
		pending = make(map[any]struct{})
		mapped  map[string]any
		listed  []any
	)
	if _, ok := coll.(map[string]any); ok {
		mapped = make(map[string]any, len(ms))
	} else {
		listed = make([]any, len(ms))
	}
	set := func(key, v any) {
		if mapped != nil {
			mapped[key.(string)] = v
			return
		}
		listed[key.(int)] = v
	}
	snapshot := func() any {
		if mapped != nil {
			return maps.Clone(mapped)
		}
		return slices.Clone(listed)
	}

	for _, m := range ms {
		if _, ok := m.value.(*Signal); ok {
			signals = append(signals, m)
			pending[m.key] = struct{}{}
			set(m.key, nil)
			continue
		}
		set(m.key, m.value)
	}
	if len(signals) == 0 {
		return g.Of(snapshot())
	}

	return g.Generate(func() *Signal {
		return g.anyOf(signals).Then(func(t *Signal, v any, _ ...any) error {
			kv := v.(Keyed)
			set(kv.Key, kv.Value)
			delete(pending, kv.Key)
			if len(pending) == 0 {
				t.Put(snapshot())
			}
			return nil
		})
	})
}

// Merge is Any without the keys: it puts the bare values of every member.
func (g *Graph) Merge(coll any) *Signal {
	ms, err := members(coll)
	must(err)
	return g.Generate(func() *Signal {
		return g.anyOf(ms).Map(func(v any) any {
			return v.(Keyed).Value
		})
	})
}

// IsSignal reports whether v is a *Signal.
func IsSignal(v any) bool {
	_, ok := v.(*Signal)
	return ok
}

// Spread adapts fn so that a []any value is passed as separate arguments and
// a Keyed value as (value, key). Other values are passed as the only
// argument.
//
// Example:
//
//	g.Any(map[string]any{"a": a, "b": b}).Map(ksignal.Spread(func(args ...any) any {
//	    return fmt.Sprintf("%v=%v", args[1], args[0])
//	}))
func Spread(fn func(args ...any) any) func(v any) any {
	return func(v any) any {
		switch vs := v.(type) {
		case []any:
			return fn(vs...)
		case Keyed:
			return fn(vs.Value, vs.Key)
		default:
			return fn(v)
		}
	}
}
