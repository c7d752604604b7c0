package main

import (
	"github.com/birdayz/ksignal/internal/config"
	"github.com/birdayz/ksignal/pkg/log"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ksig",
		Short:         "ksig runs reactive signal pipelines",
		Long:          `ksig builds push-based signal graphs, in memory or bridged to Kafka topics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides the config")

	cmd.AddCommand(newDemoCmd(opts), newBridgeCmd(opts))
	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) logr.Logger {
	return log.NewLogr(log.New(log.Options{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	}))
}
