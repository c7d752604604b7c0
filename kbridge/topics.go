package kbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/birdayz/ksignal"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// EnsureTopics creates the given topics. Topics that already exist are not
// an error.
func EnsureTopics(ctx context.Context, adm *kadm.Client, partitions int32, replicationFactor int16, topics ...string) error {
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, map[string]*string{}, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	var errs error
	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			errs = multierr.Append(errs, fmt.Errorf("create topic %s: %w", t.Topic, t.Err))
		}
	}
	return errs
}

// Runner is implemented by Source.
type Runner interface {
	Run(ctx context.Context) error
}

// Run runs d and every runner until ctx is done or one of them fails. The
// dispatcher is closed when Run returns.
func Run(ctx context.Context, d *ksignal.Dispatcher, runners ...Runner) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return d.Run(ctx)
	})
	for _, r := range runners {
		r := r
		grp.Go(func() error {
			return r.Run(ctx)
		})
	}
	err := grp.Wait()
	d.Close()
	return err
}
