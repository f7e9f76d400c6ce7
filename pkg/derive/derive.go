// Package derive computes the cross-experiment metrics of a benchmark group:
// elapsed-time overhead against the group's baseline, and the series the
// chart view plots.
package derive

import (
	"fmt"
	"math"
	"strconv"

	"github.com/justin-oleary/simwatch/pkg/experiment"
)

// minAxis is the smallest y-axis upper bound of an overhead chart, in percent.
const minAxis = 5.0

// Baseline returns the simulated time of the group's completed latency-0
// record. ok is false if there is none or its time is not positive.
func Baseline(records []experiment.Record) (float64, bool) {
	i := baselineIndex(records)
	if i < 0 {
		return 0, false
	}
	secs, _ := records[i].SimSeconds()
	return secs, true
}

// baselineIndex is the position of the record Baseline reports, or -1.
func baselineIndex(records []experiment.Record) int {
	for i, r := range records {
		if r.Latency != 0 || r.Status != experiment.Completed {
			continue
		}
		if secs, ok := r.SimSeconds(); ok && secs > 0 {
			return i
		}
	}
	return -1
}

// Percent returns (current-baseline)/baseline*100.
func Percent(baseline, current float64) float64 {
	return (current - baseline) / baseline * 100
}

// Apply sets the overhead of every record in place. Only the record Baseline
// picks is labelled as the baseline; a latency-0 record that is unfinished or
// has no usable time is Undefined like the rest of its group.
func Apply(groups []experiment.Group) {
	for gi := range groups {
		recs := groups[gi].Records
		bi := baselineIndex(recs)
		var base float64
		if bi >= 0 {
			base, _ = recs[bi].SimSeconds()
		}
		for i := range recs {
			recs[i].Overhead = overheadOf(recs[i], i == bi, base, bi >= 0)
		}
	}
}

func overheadOf(r experiment.Record, isBase bool, base float64, hasBase bool) experiment.Overhead {
	if isBase {
		return experiment.Overhead{Kind: experiment.OverheadBaseline}
	}
	cur, ok := r.SimSeconds()
	if !hasBase || !ok || r.Latency == 0 {
		return experiment.Overhead{Kind: experiment.OverheadUndefined}
	}
	return experiment.Overhead{Kind: experiment.OverheadPercent, Percent: Percent(base, cur)}
}

// Format renders an overhead for the table and summary views.
func Format(o experiment.Overhead) string {
	switch o.Kind {
	case experiment.OverheadBaseline:
		return "baseline"
	case experiment.OverheadPercent:
		return FormatPercent(o.Percent)
	}
	return "N/A"
}

// FormatPercent renders a signed percentage with two decimals: "+25.00%",
// "0.00%", "-3.10%".
func FormatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	switch {
	case s == "-0.00":
		s = "0.00"
	case p > 0 && s != "0.00":
		s = "+" + s
	}
	return s + "%"
}

// Point is one bar of an overhead chart.
type Point struct {
	Label      string  `json:"label"`
	Latency    int64   `json:"latency"`
	SimSeconds float64 `json:"sim_seconds"`
	Overhead   float64 `json:"overhead_pct"`
}

// Series is the chart view of one benchmark group.
type Series struct {
	Benchmark   string  `json:"benchmark"`
	Points      []Point `json:"points"`
	Baseline    float64 `json:"baseline_seconds"`
	HasBaseline bool    `json:"has_baseline"`
	YMin        float64 `json:"y_min"`
	YMax        float64 `json:"y_max"`
}

// ChartSeries builds the chart of a group from its completed records that
// carry a simulated time. ok is false with fewer than two points.
//
// Without a baseline every overhead is plotted as 0. That is a display
// fallback only; Format still reports N/A for those records.
func ChartSeries(g experiment.Group) (Series, bool) {
	s := Series{Benchmark: g.Name}
	s.Baseline, s.HasBaseline = Baseline(g.Records)

	for _, r := range g.Records {
		if r.Status != experiment.Completed {
			continue
		}
		secs, ok := r.SimSeconds()
		if !ok {
			continue
		}
		p := Point{Label: AxisLabel(r.Latency), Latency: r.Latency, SimSeconds: secs}
		if s.HasBaseline {
			p.Overhead = Percent(s.Baseline, secs)
		}
		s.Points = append(s.Points, p)
	}
	if len(s.Points) < 2 {
		return Series{}, false
	}

	maxOv, minOv := math.Inf(-1), 0.0
	for _, p := range s.Points {
		maxOv = math.Max(maxOv, p.Overhead)
		minOv = math.Min(minOv, p.Overhead)
	}
	s.YMax = AxisMax(maxOv)
	if minOv < 0 {
		s.YMin = minOv * 1.2
	}
	return s, true
}

// AxisMax pads the largest overhead by 20% and never goes below 5%.
func AxisMax(maxOverhead float64) float64 {
	return math.Max(minAxis, maxOverhead*1.2)
}

// AxisLabel is the short x-axis label of a latency.
func AxisLabel(latency int64) string {
	switch {
	case latency == 0:
		return "Baseline"
	case latency >= 1_000_000:
		return fmt.Sprintf("%.0fM", float64(latency)/1e6)
	case latency >= 1000:
		return fmt.Sprintf("%.0fK", float64(latency)/1e3)
	}
	return strconv.FormatInt(latency, 10)
}
