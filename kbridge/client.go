// Package kbridge connects signal graphs to Kafka: a Source polls records
// into a signal and a Sink produces the values of a signal to a topic.
package kbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

//go:generate mockgen -destination=mock_client_test.go -package=kbridge . Client

// Client is the part of *kgo.Client used by the bridge.
type Client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
}

var _ Client = (*kgo.Client)(nil)

// Record is put by a Source created with WithRecordMetadata.
type Record[V any] struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     V
	Timestamp time.Time
}

// FetchError is raised when polling a partition fails.
type FetchError struct {
	Topic     string
	Partition int32
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error on topic %s, partition %d: %v", e.Topic, e.Partition, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError is raised when a record value cannot be deserialized.
type DecodeError struct {
	Topic     string
	Partition int32
	Offset    int64
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed for record [topic=%s, partition=%d, offset=%d]: %v",
		e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ProduceError is reported when producing a value fails.
type ProduceError struct {
	Topic string
	Err   error
}

func (e *ProduceError) Error() string {
	return fmt.Sprintf("produce to topic %s: %v", e.Topic, e.Err)
}

func (e *ProduceError) Unwrap() error {
	return e.Err
}
