// Package config loads the ksig command configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Record formats of the bridge topics.
const (
	FormatString = "string"
	FormatProto  = "proto"
)

type Kafka struct {
	Brokers           []string `yaml:"brokers"`
	Format            string   `yaml:"format"`
	Group             string   `yaml:"group"`
	Input             string   `yaml:"input"`
	Output            string   `yaml:"output"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

type Config struct {
	Log         Log    `yaml:"log"`
	Kafka       Kafka  `yaml:"kafka"`
	MetricsAddr string `yaml:"metrics_addr"`
	InboxSize   int    `yaml:"inbox_size"`
}

func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Kafka: Kafka{
			Brokers:           []string{"localhost:9092"},
			Group:             "ksig",
			Format:            FormatString,
			Partitions:        1,
			ReplicationFactor: 1,
		},
		MetricsAddr: ":9090",
		InboxSize:   256,
	}
}

// Load reads the YAML file at path over the defaults, then applies KSIG_*
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("KSIG_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("KSIG_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("KSIG_FORMAT"); ok {
		c.Kafka.Format = v
	}
	if v, ok := lookup("KSIG_GROUP"); ok {
		c.Kafka.Group = v
	}
	if v, ok := lookup("KSIG_INPUT_TOPIC"); ok {
		c.Kafka.Input = v
	}
	if v, ok := lookup("KSIG_OUTPUT_TOPIC"); ok {
		c.Kafka.Output = v
	}
	if v, ok := lookup("KSIG_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := lookup("KSIG_INBOX_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KSIG_INBOX_SIZE: %w", err)
		}
		c.InboxSize = n
	}
	return nil
}

// ValidateBridge checks the settings the bridge command needs.
func (c Config) ValidateBridge() error {
	var errs []error
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is empty"))
	}
	if c.Kafka.Input == "" {
		errs = append(errs, errors.New("kafka.input is not set"))
	}
	if c.Kafka.Output == "" {
		errs = append(errs, errors.New("kafka.output is not set"))
	}
	if c.Kafka.Input != "" && c.Kafka.Input == c.Kafka.Output {
		errs = append(errs, fmt.Errorf("kafka.input and kafka.output are both %q", c.Kafka.Input))
	}
	if c.Kafka.Format != FormatString && c.Kafka.Format != FormatProto {
		errs = append(errs, fmt.Errorf("kafka.format must be %q or %q, got %q", FormatString, FormatProto, c.Kafka.Format))
	}
	if c.Kafka.Partitions < 1 {
		errs = append(errs, fmt.Errorf("kafka.partitions must be positive, got %d", c.Kafka.Partitions))
	}
	return multierr.Combine(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
