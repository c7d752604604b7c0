package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/birdayz/ksignal"
	"github.com/birdayz/ksignal/internal/config"
	"github.com/birdayz/ksignal/kbridge"
	"github.com/birdayz/ksignal/kmetrics"
	"github.com/birdayz/ksignal/kproto"
	"github.com/birdayz/ksignal/kserde"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const flushTimeout = 10 * time.Second

func newBridgeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Upper-case string records from one topic into another",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateBridge(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBridge(ctx, cfg, newLogger(cmd, cfg))
		},
	}
	return cmd
}

func runBridge(ctx context.Context, cfg config.Config, log logr.Logger) error {
	reg := prometheus.NewRegistry()
	collector, err := kmetrics.NewCollector(reg)
	if err != nil {
		return err
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Kafka.Brokers...),
		kgo.ConsumerGroup(cfg.Kafka.Group),
		kgo.ConsumeTopics(cfg.Kafka.Input),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := kbridge.EnsureTopics(ctx, kadm.NewClient(client), cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor, cfg.Kafka.Input, cfg.Kafka.Output); err != nil {
		return err
	}

	g := ksignal.NewGraph(
		ksignal.WithLogr(log),
		ksignal.WithObserver(collector),
		ksignal.WithFatalHandler(func(err error) {
			log.Error(err, "unhandled signal error")
		}),
	)
	d := ksignal.NewDispatcher(g, ksignal.WithInboxSize(cfg.InboxSize))

	in := g.New(ksignal.Named("in:" + cfg.Kafka.Input))
	source, sink, err := wireBridge(ctx, in, d, client, cfg.Kafka, log)
	if err != nil {
		return err
	}

	log.Info("bridge started", "input", cfg.Kafka.Input, "output", cfg.Kafka.Output, "format", cfg.Kafka.Format, "metrics", cfg.MetricsAddr)
	err = kbridge.Run(ctx, d, source, newMetricsServer(cfg.MetricsAddr, reg))
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if ferr := sink.Flush(flushCtx); ferr != nil {
		log.Error(ferr, "flush failed")
	}
	log.Info("bridge stopped", "produced", sink.Produced())

	return multierr.Append(err, g.Close())
}

type producer interface {
	Flush(ctx context.Context) error
	Produced() uint64
}

// wireBridge builds the upper-casing pipeline between in and the output
// topic for the configured record format.
func wireBridge(ctx context.Context, in *ksignal.Signal, d *ksignal.Dispatcher, client kbridge.Client, cfg config.Kafka, log logr.Logger) (kbridge.Runner, producer, error) {
	switch cfg.Format {
	case "", config.FormatString:
		upper := in.Map(func(v any) any {
			return strings.ToUpper(v.(string))
		})
		sink := kbridge.NewSink(ctx, upper, d, client, cfg.Output, kserde.String.Serializer,
			kbridge.WithSinkLogr[string](log))
		source := kbridge.NewSource(client, d, in, kserde.String.Deserializer,
			kbridge.WithSourceLogr(log))
		return source, sink, nil

	case config.FormatProto:
		serde := kproto.Serde[*wrapperspb.StringValue]()
		upper := kproto.Validate(in).Map(func(v any) any {
			return wrapperspb.String(strings.ToUpper(v.(*wrapperspb.StringValue).GetValue()))
		})
		sink := kbridge.NewSink(ctx, upper, d, client, cfg.Output, serde.Serializer,
			kbridge.WithSinkLogr[*wrapperspb.StringValue](log))
		source := kbridge.NewSource(client, d, in, serde.Deserializer,
			kbridge.WithSourceLogr(log))
		return source, sink, nil
	}
	return nil, nil, fmt.Errorf("unknown record format %q", cfg.Format)
}
