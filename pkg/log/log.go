package log

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

// Options tune New. The zero value logs at info level, to stdout in console
// format, or as JSON to stderr when running in Kubernetes.
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

func New(opts Options) *zerolog.Logger {
	var output io.Writer
	switch {
	case opts.Output != nil && opts.JSON:
		output = opts.Output
	case opts.Output != nil:
		output = zerolog.ConsoleWriter{Out: opts.Output, TimeFormat: "2006-01-02T15:04:05.999Z07:00", NoColor: true}
	case opts.JSON || os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		output = os.Stderr
	default:
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02T15:04:05.999Z07:00"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &logger
}

// NewLogr wraps a zerolog logger for libraries taking a logr.Logger. logr
// verbosity 1 maps to zerolog debug.
func NewLogr(zl *zerolog.Logger) logr.Logger {
	zerologr.VerbosityFieldName = ""
	return zerologr.New(zl)
}
