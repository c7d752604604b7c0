package kbridge

import (
	"context"
	"errors"

	"github.com/birdayz/ksignal"
	"github.com/birdayz/ksignal/kserde"
	"github.com/go-logr/logr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// SourceOption configures a Source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	metadata bool
	log      logr.Logger
}

// WithRecordMetadata makes the source put Record values instead of bare
// deserialized values.
func WithRecordMetadata() SourceOption {
	return func(c *sourceConfig) {
		c.metadata = true
	}
}

// WithSourceLogr sets the logger of a source.
func WithSourceLogr(log logr.Logger) SourceOption {
	return func(c *sourceConfig) {
		c.log = log
	}
}

// Source polls records and puts their deserialized values into a target
// signal. Fetch and decode failures are raised on the target.
type Source[V any] struct {
	client Client
	d      *ksignal.Dispatcher
	target *ksignal.Signal
	de     kserde.Deserializer[V]
	cfg    sourceConfig
}

// NewSource creates a source feeding target. The graph of target must be
// served by d.
func NewSource[V any](client Client, d *ksignal.Dispatcher, target *ksignal.Signal, de kserde.Deserializer[V], opts ...SourceOption) *Source[V] {
	cfg := sourceConfig{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Source[V]{
		client: client,
		d:      d,
		target: target,
		de:     de,
		cfg:    cfg,
	}
}

// Run polls until ctx is done or the client is closed. Each poll is handed
// to the dispatcher as one batch so records keep their order.
func (s *Source[V]) Run(ctx context.Context) error {
	for {
		f := s.client.PollFetches(ctx)
		if f.IsClientClosed() {
			s.cfg.log.Info("client closed, stopping source")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := s.collect(f)
		if len(batch) == 0 {
			continue
		}
		if err := s.d.Post(ctx, func(*ksignal.Graph) error {
			for _, it := range batch {
				if it.err != nil {
					s.target.Raise(it.err)
					continue
				}
				s.target.Put(it.value)
			}
			return nil
		}); err != nil {
			return err
		}
	}
}

type polled struct {
	value any
	err   error
}

func (s *Source[V]) collect(f kgo.Fetches) []polled {
	var batch []polled
	f.EachError(func(topic string, partition int32, err error) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.cfg.log.Error(err, "fetch error", "topic", topic, "partition", partition)
		batch = append(batch, polled{err: &FetchError{Topic: topic, Partition: partition, Err: err}})
	})
	f.EachRecord(func(r *kgo.Record) {
		v, err := s.de(r.Value)
		if err != nil {
			batch = append(batch, polled{err: &DecodeError{
				Topic:     r.Topic,
				Partition: r.Partition,
				Offset:    r.Offset,
				Err:       err,
			}})
			return
		}
		if !s.cfg.metadata {
			batch = append(batch, polled{value: v})
			return
		}
		batch = append(batch, polled{value: Record[V]{
			Topic:     r.Topic,
			Partition: r.Partition,
			Offset:    r.Offset,
			Key:       r.Key,
			Value:     v,
			Timestamp: r.Timestamp,
		}})
	})
	return batch
}
