// Package report turns one scan's groups into a renderer-agnostic Model and
// serializes it. Renderers see only the Model, so the same Model always
// renders to the same bytes.
package report

import (
	"strconv"
	"time"

	"github.com/justin-oleary/simwatch/pkg/artifact"
	"github.com/justin-oleary/simwatch/pkg/derive"
	"github.com/justin-oleary/simwatch/pkg/experiment"
	"github.com/justin-oleary/simwatch/pkg/procs"
)

const (
	defaultGroup = experiment.DefaultGroup
	// DefaultTitle heads the document.
	DefaultTitle = "gem5-SALAM Experiment Monitor"

	placeholder = "-"
	unknown     = "N/A"
)

// Totals counts records per status across all groups.
type Totals struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Running   int     `json:"running"`
	Failed    int     `json:"failed"`
	Pending   int     `json:"pending"`
	Progress  float64 `json:"progress_pct"`
}

// Finished is the number of records in a terminal state.
func (t Totals) Finished() int { return t.Completed + t.Failed }

// Row is one experiment, formatted for display.
type Row struct {
	Benchmark     string `json:"benchmark"`
	Latency       int64  `json:"latency"`
	LatencyLabel  string `json:"latency_label"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	SimTime       string `json:"sim_time"`
	Ticks         string `json:"ticks"`
	Overhead      string `json:"overhead"`
	OverheadClass string `json:"-"`
	Validations   string `json:"validations"`
	CacheRate     string `json:"cache_hit_rate"`
	Placeholder   bool   `json:"placeholder,omitempty"`
}

// GroupView is one benchmark's detail table.
type GroupView struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Rows      []Row  `json:"rows"`
}

// Model is everything a renderer needs for one document.
type Model struct {
	Title          string          `json:"title"`
	OutputDir      string          `json:"output_dir"`
	GeneratedAt    time.Time       `json:"generated_at"`
	RefreshSeconds int             `json:"refresh_seconds"`
	Totals         Totals          `json:"totals"`
	Groups         []GroupView     `json:"groups"`
	Results        []Row           `json:"results"`
	Charts         []derive.Series `json:"charts"`
	Processes      []procs.Process `json:"processes"`
}

// Input is the raw material of a Model.
type Input struct {
	Title     string
	Root      string
	Groups    []experiment.Group
	Processes []procs.Process
	Now       time.Time
	Refresh   time.Duration
}

// Build assembles the Model. Groups must already carry derived overheads.
func Build(in Input) Model {
	m := Model{
		Title:          in.Title,
		OutputDir:      in.Root,
		GeneratedAt:    in.Now,
		RefreshSeconds: int(in.Refresh / time.Second),
		Groups:         []GroupView{},
		Results:        []Row{},
		Charts:         []derive.Series{},
		Processes:      in.Processes,
	}
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Processes == nil {
		m.Processes = []procs.Process{}
	}

	for _, g := range in.Groups {
		m.Totals.add(g)
		if len(g.Records) == 0 {
			continue
		}

		gv := GroupView{
			Name:      g.Name,
			Title:     groupTitle(g.Name),
			Completed: g.Count(experiment.Completed),
			Total:     len(g.Records),
		}
		for _, r := range g.Records {
			gv.Rows = append(gv.Rows, detailRow(r))
			if r.Status == experiment.Completed && len(r.Metrics) > 0 {
				m.Results = append(m.Results, resultRow(r))
			}
		}
		m.Groups = append(m.Groups, gv)

		if s, ok := derive.ChartSeries(g); ok {
			s.Benchmark = DisplayName(g.Name)
			m.Charts = append(m.Charts, s)
		}
	}

	if m.Totals.Total > 0 {
		m.Totals.Progress = float64(m.Totals.Finished()) / float64(m.Totals.Total) * 100
	}
	return m
}

func (t *Totals) add(g experiment.Group) {
	for _, r := range g.Records {
		t.Total++
		switch r.Status {
		case experiment.Completed:
			t.Completed++
		case experiment.Running:
			t.Running++
		case experiment.Failed:
			t.Failed++
		default:
			t.Pending++
		}
	}
}

func groupTitle(name string) string {
	if name == defaultGroup {
		return "Benchmark"
	}
	return name
}

// detailRow formats a record for its benchmark's table. Records without a
// simulated time show "-" in every metric column.
func detailRow(r experiment.Record) Row {
	row := Row{
		Benchmark:    DisplayName(r.Benchmark),
		Latency:      r.Latency,
		LatencyLabel: FormatLatency(r.Latency),
		Status:       string(r.Status),
		Error:        r.Error,
		Placeholder:  r.Placeholder,
		SimTime:      placeholder,
		Ticks:        placeholder,
		Overhead:     placeholder,
		Validations:  placeholder,
		CacheRate:    placeholder,
	}
	secs, ok := r.SimSeconds()
	if !ok {
		return row
	}
	fillMetrics(&row, r, secs)
	return row
}

// resultRow formats a completed record for the summary table.
func resultRow(r experiment.Record) Row {
	row := detailRow(r)
	if _, ok := r.SimSeconds(); !ok {
		row.SimTime = unknown
		row.Overhead = derive.Format(r.Overhead)
		row.OverheadClass = overheadClass(r.Overhead)
		row.Validations, row.CacheRate = validationCells(r)
		row.Ticks = ticksCell(r)
	}
	return row
}

func fillMetrics(row *Row, r experiment.Record, secs float64) {
	row.SimTime = FormatSimTime(secs)
	row.Ticks = ticksCell(r)
	row.Overhead = derive.Format(r.Overhead)
	row.OverheadClass = overheadClass(r.Overhead)
	row.Validations, row.CacheRate = validationCells(r)
}

func ticksCell(r experiment.Record) string {
	if t, ok := r.Metrics.Int(artifact.SimTicks); ok {
		return FormatTicks(t)
	}
	return unknown
}

// validationCells returns the validations and cache-hit-rate columns. A
// baseline run with validation off shows "disabled" rather than N/A.
func validationCells(r experiment.Record) (validations, rate string) {
	enabled, _ := r.Metrics.Bool(artifact.ValidationEnabled)
	if r.Latency == 0 && !enabled {
		return "disabled", placeholder
	}
	validations, rate = unknown, unknown
	if n, ok := r.Metrics.Int(artifact.ValidationRequests); ok {
		validations = strconv.FormatInt(n, 10)
	}
	if hr, ok := r.Metrics.Float(artifact.ValidationCacheHitRate); ok {
		rate = artifact.FormatRate(hr)
	}
	return validations, rate
}

func overheadClass(o experiment.Overhead) string {
	switch o.Kind {
	case experiment.OverheadBaseline:
		return "zero"
	case experiment.OverheadPercent:
		if derive.FormatPercent(o.Percent)[0] == '+' {
			return "positive"
		}
		return "zero"
	}
	return ""
}
