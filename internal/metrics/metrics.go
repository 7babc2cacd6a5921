// Package metrics counts machine activity in a Prometheus registry.
//
// The simulator is a one-shot CLI, so nothing is served over HTTP. The
// registry is written in the text exposition format to a file when the run
// ends, which suits the node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/turing/internal/engine"
)

// Collector owns a private registry and the machine metrics.
type Collector struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	steps    prometheus.Counter
	growths  prometheus.Counter
	cells    prometheus.Gauge
	runSteps prometheus.Histogram
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_total",
				Help: "Total number of finished runs by final status",
			},
			[]string{"status"},
		),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turing_steps_total",
			Help: "Total number of transitions applied",
		}),
		growths: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turing_tape_growths_total",
			Help: "Total number of tape reallocations",
		}),
		cells: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "turing_tape_cells",
			Help: "Allocated tape cells of the most recent run",
		}),
		runSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "turing_run_steps",
			Help:    "Steps taken per finished run",
			Buckets: prometheus.ExponentialBuckets(1, 10, 6),
		}),
	}
	c.registry.MustRegister(c.runs, c.steps, c.growths, c.cells, c.runSteps)
	return c
}

// Hooks returns engine hooks that record into the collector.
func (c *Collector) Hooks() engine.Hooks {
	return engine.Hooks{
		OnStep: func(engine.StepEvent) {
			c.steps.Inc()
		},
		OnGrow: func(e engine.GrowEvent) {
			c.growths.Inc()
			c.cells.Set(float64(e.NewSize))
		},
		OnFinish: func(r *engine.Result) {
			c.runs.WithLabelValues(r.Status.String()).Inc()
			c.cells.Set(float64(r.TapeSize))
			c.runSteps.Observe(float64(r.Steps))
		},
	}
}

// WriteFile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
