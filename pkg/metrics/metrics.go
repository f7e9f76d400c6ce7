// Package metrics registers the Prometheus collectors for the experiment
// monitor. The poller updates them once per cycle; cmd/simwatch exposes them
// through promhttp when --metrics-addr is set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Experiments is the number of experiments per lifecycle status in the
	// most recent cycle. Placeholders count as pending.
	Experiments = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simwatch_experiments",
			Help: "Experiments observed in the last scan, by status.",
		},
		[]string{"status"},
	)

	// OverheadPercent is the elapsed-time overhead of each experiment against
	// its benchmark baseline. Only experiments with a defined overhead are
	// exported; the series is reset every cycle so stale cells disappear.
	OverheadPercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simwatch_overhead_percent",
			Help: "Simulated-time overhead versus the benchmark baseline, in percent.",
		},
		[]string{"benchmark", "latency"},
	)

	// CycleDuration covers scan through persist. Buckets span 1ms to ~16s;
	// a cycle over a few hundred experiments normally lands well under 1s.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simwatch_cycle_duration_seconds",
			Help:    "Wall-clock duration of one scan/render/persist cycle.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
	)

	// Cycles counts completed cycles.
	Cycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simwatch_cycles_total",
			Help: "Total number of monitor cycles run.",
		},
	)

	// RenderFailures counts cycles whose document could not be rendered or
	// persisted. The previous document stays in place when this increments.
	RenderFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simwatch_render_failures_total",
			Help: "Total number of cycles that failed to render or persist the report.",
		},
	)

	// ObservedProcesses is the simulator process count from the last cycle.
	ObservedProcesses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "simwatch_observed_processes",
			Help: "Simulator processes seen in the last process snapshot.",
		},
	)
)
