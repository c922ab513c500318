// Package telemetry instruments the Solver Driver with a local prometheus
// registry: a solve-duration histogram and a sat/unsat outcome counter,
// following plexd/internal/metrics's registration style.
package telemetry

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector holds the metrics for one solvetables run.
type Collector struct {
	registry      *prometheus.Registry
	solveDuration prometheus.Histogram
	outcomes      *prometheus.CounterVec
}

// NewCollector creates a Collector registered on a fresh, process-local
// registry (a solvetables run is a single batch invocation, not a long-lived
// server, so there is no reason to share the default global registry).
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solvetables_solve_duration_seconds",
			Help:    "Duration of a single chain-formula solve.",
			Buckets: prometheus.DefBuckets,
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solvetables_solve_outcomes_total",
			Help: "Count of solve outcomes by result (sat, unsat).",
		}, []string{"result"}),
	}
	reg.MustRegister(c.solveDuration, c.outcomes)
	return c
}

// ObserveSolve records the duration and outcome of one oracle check.
func (c *Collector) ObserveSolve(d time.Duration, sat bool) {
	c.solveDuration.Observe(d.Seconds())
	if sat {
		c.outcomes.WithLabelValues("sat").Inc()
	} else {
		c.outcomes.WithLabelValues("unsat").Inc()
	}
}

// WriteText writes the collected metrics to w in the prometheus text
// exposition format, for callers that want to print them (e.g. a
// --metrics CLI flag).
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
