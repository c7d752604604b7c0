package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"go.uber.org/multierr"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		assert.NoError(t, err)
		assert.Equal(t, "ksig", cfg.Kafka.Group)
		assert.Equal(t, int32(1), cfg.Kafka.Partitions)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ksig.yaml")
		assert.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
kafka:
  brokers: [a:9092, b:9092]
  input: in
  output: out
  partitions: 3
`), 0o600))

		cfg, err := Load(path)
		assert.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, int32(3), cfg.Kafka.Partitions)
		assert.Equal(t, int16(1), cfg.Kafka.ReplicationFactor)
		assert.Equal(t, ":9090", cfg.MetricsAddr)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ksig.yaml")
		assert.NoError(t, os.WriteFile(path, []byte("kafka: [\n"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("KSIG_BROKERS", " x:1, ,y:2 ")
		t.Setenv("KSIG_INPUT_TOPIC", "events")
		t.Setenv("KSIG_INBOX_SIZE", "16")
		cfg, err := Load("")
		assert.NoError(t, err)
		assert.Equal(t, []string{"x:1", "y:2"}, cfg.Kafka.Brokers)
		assert.Equal(t, "events", cfg.Kafka.Input)
		assert.Equal(t, 16, cfg.InboxSize)
	})

	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("KSIG_INBOX_SIZE", "many")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidateBridge(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateBridge()
	assert.Equal(t, 2, len(multierr.Errors(err)))

	cfg.Kafka.Input, cfg.Kafka.Output = "t", "t"
	err = cfg.ValidateBridge()
	assert.Equal(t, 1, len(multierr.Errors(err)))

	cfg.Kafka.Output = "u"
	assert.NoError(t, cfg.ValidateBridge())

	cfg.Kafka.Format = "avro"
	assert.Contains(t, cfg.ValidateBridge().Error(), `kafka.format must be "string" or "proto", got "avro"`)
}
