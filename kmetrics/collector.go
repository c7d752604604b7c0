// Package kmetrics exports signal graph events as Prometheus metrics.
package kmetrics

import (
	"github.com/birdayz/ksignal"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts graph events. Install it with ksignal.WithObserver.
type Collector struct {
	events *prometheus.CounterVec
	live   prometheus.Gauge
	fatal  prometheus.Counter
}

var _ ksignal.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ksignal_events_total",
				Help: "Total number of signal graph events by kind",
			},
			[]string{"kind"},
		),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ksignal_live_signals",
			Help: "Number of signals created and not yet ended",
		}),
		fatal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ksignal_fatal_errors_total",
			Help: "Total number of errors that reached a signal without targets or handler",
		}),
	}
	for _, m := range []prometheus.Collector{c.events, c.live, c.fatal} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCollector is like NewCollector but panics on error.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) HandleEvent(e ksignal.Event) {
	c.events.WithLabelValues(e.Kind.String()).Inc()
	switch e.Kind {
	case ksignal.EventCreate:
		c.live.Inc()
	case ksignal.EventEnd:
		c.live.Dec()
	case ksignal.EventFatal:
		c.fatal.Inc()
	}
}
