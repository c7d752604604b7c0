package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/ksignal"
	"github.com/birdayz/ksignal/internal/config"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestDemo(t *testing.T) {
	t.Run("run demo", func(t *testing.T) {
		var out bytes.Buffer
		assert.NoError(t, runDemo(&out, ksignal.NewGraph(), 10, 2))

		lines := strings.Split(out.String(), "\n")
		var squares []string
		for _, l := range lines {
			if strings.HasPrefix(l, "square ") {
				squares = append(squares, l)
			}
		}
		assert.Equal(t, []string{"square 4", "square 16"}, squares)
		assert.Contains(t, out.String(), "numbers#1")
	})

	t.Run("command", func(t *testing.T) {
		var out, errOut bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"demo", "--count", "4", "--limit", "5"})

		assert.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "square 16")
		assert.NotContains(t, out.String(), "square 36")
	})
}

func TestBridgeValidation(t *testing.T) {
	var errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"bridge"})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "kafka.input is not set")
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "ksig_test_total"})
	reg.MustRegister(c)
	c.Inc()

	srv := httptest.NewServer(newMetricsRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	assert.NoError(t, err)
	defer resp.Body.Close()
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body.String(), "ksig_test_total 1")

	resp, err = http.Get(srv.URL + "/healthz")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type recordingClient struct {
	records []*kgo.Record
}

func (c *recordingClient) PollFetches(ctx context.Context) kgo.Fetches {
	<-ctx.Done()
	return nil
}

func (c *recordingClient) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	c.records = append(c.records, r)
	promise(r, nil)
}

func (c *recordingClient) Flush(context.Context) error {
	return nil
}

func TestWireBridge(t *testing.T) {
	ctx := context.Background()

	t.Run("string", func(t *testing.T) {
		g := ksignal.NewGraph()
		client := &recordingClient{}
		in := g.New()
		source, sink, err := wireBridge(ctx, in, ksignal.NewDispatcher(g), client, config.Kafka{Output: "out"}, logr.Discard())
		assert.NoError(t, err)
		assert.NotZero(t, source)

		in.Put("hello")
		assert.Equal(t, 1, len(client.records))
		assert.Equal(t, []byte("HELLO"), client.records[0].Value)
		assert.Equal(t, uint64(1), sink.Produced())
	})

	t.Run("proto", func(t *testing.T) {
		g := ksignal.NewGraph()
		client := &recordingClient{}
		in := g.New()
		cfg := config.Kafka{Output: "out", Format: config.FormatProto}
		_, sink, err := wireBridge(ctx, in, ksignal.NewDispatcher(g), client, cfg, logr.Discard())
		assert.NoError(t, err)

		in.Put(wrapperspb.String("hello"))
		assert.Equal(t, 1, len(client.records))
		var got wrapperspb.StringValue
		assert.NoError(t, proto.Unmarshal(client.records[0].Value, &got))
		assert.Equal(t, "HELLO", got.GetValue())
		assert.NoError(t, sink.Flush(ctx))
	})

	t.Run("unknown format", func(t *testing.T) {
		g := ksignal.NewGraph()
		_, _, err := wireBridge(ctx, g.New(), ksignal.NewDispatcher(g), &recordingClient{}, config.Kafka{Format: "avro"}, logr.Discard())
		assert.EqualError(t, err, `unknown record format "avro"`)
	})
}
