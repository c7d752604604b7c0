package integrationtest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/ksignal"
	"github.com/birdayz/ksignal/kbridge"
	"github.com/birdayz/ksignal/kserde"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestBridge(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	var brokers = []struct {
		name   string
		broker Broker
	}{
		{
			name:   "redpanda",
			broker: &RedpandaBroker{Image: "docker.redpanda.com/redpandadata/redpanda:v23.3.5"},
		},
	}

	for _, b := range brokers {
		t.Run(b.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
			defer cancel()

			assert.NoError(t, b.broker.Init(ctx))
			t.Cleanup(func() { _ = b.broker.Close() })
			seeds := b.broker.BootstrapServers()

			kcl, err := kgo.NewClient(kgo.SeedBrokers(seeds...))
			assert.NoError(t, err)
			defer kcl.Close()

			adm := kadm.NewClient(kcl)
			assert.NoError(t, kbridge.EnsureTopics(ctx, adm, 1, 1, "in", "out"))
			assert.NoError(t, kbridge.EnsureTopics(ctx, adm, 1, 1, "in", "out"))

			bridgeClient, err := kgo.NewClient(
				kgo.SeedBrokers(seeds...),
				kgo.ConsumerGroup("ksignal-it"),
				kgo.ConsumeTopics("in"),
				kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			)
			assert.NoError(t, err)
			defer bridgeClient.Close()

			g := ksignal.NewGraph(ksignal.WithFatalHandler(func(err error) {
				t.Errorf("unhandled: %v", err)
			}))
			d := ksignal.NewDispatcher(g)
			in := g.New(ksignal.Named("in"))
			upper := in.Map(func(v any) any { return strings.ToUpper(v.(string)) })
			sink := kbridge.NewSink(ctx, upper, d, bridgeClient, "out", kserde.String.Serializer,
				kbridge.WithKey(func(v string) []byte { return []byte(strings.ToLower(v)) }))
			source := kbridge.NewSource(bridgeClient, d, in, kserde.String.Deserializer)

			runCtx, stop := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() {
				done <- kbridge.Run(runCtx, d, source)
			}()

			for _, v := range []string{"a", "b", "c"} {
				pr := kcl.ProduceSync(ctx, &kgo.Record{Topic: "in", Value: []byte(v)})
				assert.NoError(t, pr.FirstErr())
			}

			reader, err := kgo.NewClient(
				kgo.SeedBrokers(seeds...),
				kgo.ConsumeTopics("out"),
				kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			)
			assert.NoError(t, err)
			defer reader.Close()

			var got, keys []string
			for len(got) < 3 {
				f := reader.PollFetches(ctx)
				assert.NoError(t, ctx.Err())
				f.EachRecord(func(r *kgo.Record) {
					got = append(got, string(r.Value))
					keys = append(keys, string(r.Key))
				})
			}
			assert.Equal(t, []string{"A", "B", "C"}, got)
			assert.Equal(t, []string{"a", "b", "c"}, keys)

			stop()
			assert.True(t, errors.Is(<-done, context.Canceled))
			assert.NoError(t, sink.Flush(ctx))
			assert.Equal(t, uint64(3), sink.Produced())
			assert.NoError(t, g.Close())
		})
	}
}
