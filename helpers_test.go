package ksignal

import (
	"testing"
)

// recorder collects what reaches a sink signal attached to a source.
type recorder struct {
	sink   *Signal
	values []any
	errs   []error
}

func record(s *Signal) *recorder {
	r := &recorder{}
	r.sink = s.Pipe(s.g.New(
		Named("recorder"),
		OnValue(func(_ *Signal, v any, _ ...any) error {
			r.values = append(r.values, v)
			return nil
		}),
		OnError(func(_ *Signal, err error, _ ...any) error {
			r.errs = append(r.errs, err)
			return nil
		}),
	))
	return r
}

// newTestGraph returns a graph whose fatal handler records instead of
// panicking.
func newTestGraph(t *testing.T, opts ...Option) (*Graph, *[]error) {
	t.Helper()
	var fatals []error
	opts = append([]Option{WithFatalHandler(func(err error) {
		fatals = append(fatals, err)
	})}, opts...)
	return NewGraph(opts...), &fatals
}

func ints(n ...int) []any {
	out := make([]any, len(n))
	for i, v := range n {
		out[i] = v
	}
	return out
}
