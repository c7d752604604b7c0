package kbridge

import (
	"context"
	"sync/atomic"

	"github.com/birdayz/ksignal"
	"github.com/birdayz/ksignal/kserde"
	"github.com/go-logr/logr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// SinkOption configures a Sink.
type SinkOption[V any] func(*sinkConfig[V])

type sinkConfig[V any] struct {
	key     func(V) []byte
	onError func(error)
	log     logr.Logger
}

// WithKey sets the function deriving the record key from a value.
func WithKey[V any](fn func(V) []byte) SinkOption[V] {
	return func(c *sinkConfig[V]) {
		c.key = fn
	}
}

// WithErrorHandler sets the function receiving errors that reach the sink:
// upstream errors, serialization failures and *ProduceError. The default
// logs them.
func WithErrorHandler[V any](fn func(error)) SinkOption[V] {
	return func(c *sinkConfig[V]) {
		c.onError = fn
	}
}

// WithSinkLogr sets the logger of a sink.
func WithSinkLogr[V any](log logr.Logger) SinkOption[V] {
	return func(c *sinkConfig[V]) {
		c.log = log
	}
}

// Sink produces every value reaching it to a topic.
type Sink[V any] struct {
	client   Client
	sig      *ksignal.Signal
	topic    string
	produced atomic.Uint64
}

// NewSink attaches a sink to s. Produce results arrive on client goroutines
// and failures are raised back on the sink signal through d. It must be
// called on the goroutine that owns the graph.
//
// Cancelling ctx does not abort records already handed to the client, so a
// Flush after shutdown still delivers them.
func NewSink[V any](ctx context.Context, s *ksignal.Signal, d *ksignal.Dispatcher, client Client, topic string, ser kserde.Serializer[V], opts ...SinkOption[V]) *Sink[V] {
	cfg := sinkConfig[V]{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.onError == nil {
		log := cfg.log
		cfg.onError = func(err error) {
			log.Error(err, "sink error", "topic", topic)
		}
	}

	ctx = context.WithoutCancel(ctx)
	k := &Sink[V]{client: client, topic: topic}
	k.sig = s.Pipe(s.Graph().New(
		ksignal.Named("sink:"+topic),
		ksignal.OnValue(func(self *ksignal.Signal, v any, _ ...any) error {
			typed, ok := v.(V)
			if !ok {
				return kserde.NewTypeError[V](v)
			}
			data, err := ser(typed)
			if err != nil {
				return err
			}
			r := &kgo.Record{Topic: topic, Value: data}
			if cfg.key != nil {
				r.Key = cfg.key(typed)
			}
			client.Produce(ctx, r, func(_ *kgo.Record, err error) {
				if err == nil {
					k.produced.Add(1)
					return
				}
				perr := &ProduceError{Topic: topic, Err: err}
				if postErr := d.Post(ctx, func(*ksignal.Graph) error {
					self.Raise(perr)
					return nil
				}); postErr != nil {
					cfg.onError(perr)
				}
			})
			return nil
		}),
		ksignal.OnError(func(_ *ksignal.Signal, err error, _ ...any) error {
			cfg.onError(err)
			return nil
		}),
	))
	return k
}

// Signal returns the sink signal.
func (k *Sink[V]) Signal() *ksignal.Signal {
	return k.sig
}

// Produced returns the number of records acknowledged by the broker.
func (k *Sink[V]) Produced() uint64 {
	return k.produced.Load()
}

// Flush waits until every value produced so far has been acknowledged or
// failed.
func (k *Sink[V]) Flush(ctx context.Context) error {
	return k.client.Flush(ctx)
}
