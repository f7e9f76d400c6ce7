// Package poller runs the monitor cycle: scan the output tree, derive the
// overheads, snapshot the simulator processes, render the report and replace
// the persisted document.
package poller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/justin-oleary/simwatch/pkg/derive"
	"github.com/justin-oleary/simwatch/pkg/experiment"
	"github.com/justin-oleary/simwatch/pkg/metrics"
	"github.com/justin-oleary/simwatch/pkg/procs"
	"github.com/justin-oleary/simwatch/pkg/report"
	"github.com/justin-oleary/simwatch/pkg/scan"
)

// State is where the poller is in its cycle.
type State int32

const (
	Idle State = iota
	Scanning
	Rendering
	Sleeping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Rendering:
		return "rendering"
	case Sleeping:
		return "sleeping"
	case Stopped:
		return "stopped"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// ProcessLister returns the simulator processes currently running.
// *procs.Inspector satisfies it.
type ProcessLister interface {
	Snapshot(ctx context.Context) []procs.Process
}

// Config wires a Poller. Scanner, Renderer and OutputPath are required.
type Config struct {
	Scanner    *scan.Scanner
	Procs      ProcessLister // nil skips the process snapshot
	Renderer   report.Renderer
	OutputPath string
	Title      string
	// Interval is the sleep between cycles and the page refresh period.
	Interval time.Duration
	// Watch selects the per-cycle console line over the one-shot summary
	// and turns on the page refresh.
	Watch bool

	Now     func() time.Time
	Console io.Writer
	Logger  *slog.Logger
}

// Cycle is the outcome of one Step.
type Cycle struct {
	Layout   scan.Layout
	Model    report.Model
	Bytes    int
	Duration time.Duration
}

// Poller owns the cycle state machine. Step and Run must not be called
// concurrently; State may be read from any goroutine.
type Poller struct {
	cfg   Config
	state atomic.Int32
}

// New returns an idle Poller, filling in defaults for the optional fields.
func New(cfg Config) *Poller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Poller{cfg: cfg}
}

// State reports the current state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) set(s State) {
	p.state.Store(int32(s))
}

// Step runs exactly one cycle and returns to Idle. A render or persist
// failure is returned after the collectors and console are updated; the
// previous document is left untouched.
func (p *Poller) Step(ctx context.Context) (Cycle, error) {
	start := p.cfg.Now()
	defer p.set(Idle)

	p.set(Scanning)
	res := p.cfg.Scanner.Scan()
	derive.Apply(res.Groups)

	var ps []procs.Process
	if p.cfg.Procs != nil {
		ps = p.cfg.Procs.Snapshot(ctx)
	}

	p.set(Rendering)
	in := report.Input{
		Title:     p.cfg.Title,
		Root:      p.cfg.Scanner.Root,
		Groups:    res.Groups,
		Processes: ps,
		Now:       start,
	}
	if p.cfg.Watch {
		in.Refresh = p.cfg.Interval
	}
	cyc := Cycle{Layout: res.Layout, Model: report.Build(in)}

	err := p.persist(&cyc)

	cyc.Duration = p.cfg.Now().Sub(start)
	observe(cyc, res.Groups, err)
	p.printSummary(cyc.Model.Totals)
	return cyc, err
}

func (p *Poller) persist(cyc *Cycle) error {
	var buf bytes.Buffer
	if err := p.cfg.Renderer.Render(&buf, cyc.Model); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	cyc.Bytes = buf.Len()
	if err := WriteFileAtomic(p.cfg.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}
	return nil
}

// Run cycles until ctx is cancelled. Failed cycles are logged and the loop
// carries on; the next cycle re-reads everything.
func (p *Poller) Run(ctx context.Context) {
	log := p.cfg.Logger
	log.Info("watch loop starting", "dir", p.cfg.Scanner.Root, "output", p.cfg.OutputPath,
		"interval", p.cfg.Interval)
	defer p.set(Stopped)

	for {
		if ctx.Err() != nil {
			return
		}
		cyc, err := p.Step(ctx)
		if err != nil {
			log.Error("cycle failed", "err", err)
		} else {
			log.Debug("cycle complete", "layout", cyc.Layout.String(), "bytes", cyc.Bytes,
				"duration", cyc.Duration, "experiments", cyc.Model.Totals.Total)
		}

		p.set(Sleeping)
		t := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			fmt.Fprintln(p.cfg.Console)
			log.Info("watch loop stopped")
			return
		case <-t.C:
		}
		p.set(Idle)
	}
}

func (p *Poller) printSummary(t report.Totals) {
	if p.cfg.Watch {
		fmt.Fprintf(p.cfg.Console, "\r[%s] Total: %d | Completed: %d | Running: %d | Failed: %d",
			p.cfg.Now().Format("15:04:05"), t.Total, t.Completed, t.Running, t.Failed)
		return
	}
	fmt.Fprintf(p.cfg.Console, "Summary: Total=%d, Completed=%d, Running=%d, Failed=%d\n",
		t.Total, t.Completed, t.Running, t.Failed)
}

// observe publishes one cycle to the Prometheus collectors.
func observe(cyc Cycle, groups []experiment.Group, err error) {
	metrics.Cycles.Inc()
	metrics.CycleDuration.Observe(cyc.Duration.Seconds())
	if err != nil {
		metrics.RenderFailures.Inc()
	}

	t := cyc.Model.Totals
	metrics.Experiments.WithLabelValues(string(experiment.Completed)).Set(float64(t.Completed))
	metrics.Experiments.WithLabelValues(string(experiment.Running)).Set(float64(t.Running))
	metrics.Experiments.WithLabelValues(string(experiment.Failed)).Set(float64(t.Failed))
	metrics.Experiments.WithLabelValues(string(experiment.Pending)).Set(float64(t.Pending))
	metrics.ObservedProcesses.Set(float64(len(cyc.Model.Processes)))

	metrics.OverheadPercent.Reset()
	for _, g := range groups {
		for _, r := range g.Records {
			if r.Overhead.Kind != experiment.OverheadPercent {
				continue
			}
			metrics.OverheadPercent.
				WithLabelValues(g.Name, strconv.FormatInt(r.Latency, 10)).
				Set(r.Overhead.Percent)
		}
	}
}
