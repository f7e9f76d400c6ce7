// Package experiment holds the per-cycle data model and the lifecycle
// classifier. Records are rebuilt from the filesystem on every scan; nothing
// here survives across cycles.
package experiment

import (
	"path/filepath"
	"sort"

	"github.com/justin-oleary/simwatch/pkg/artifact"
)

// DefaultGroup keys experiments found directly under the monitored root.
const DefaultGroup = "default"

// Status is the inferred lifecycle state of one experiment.
type Status string

const (
	Pending   Status = "pending"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Statuses lists every status in report order.
var Statuses = []Status{Completed, Running, Failed, Pending}

// Terminal reports whether the status can no longer change for a directory
// whose artifacts are final.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed
}

// Rank orders statuses by how much they say about a run. Used to pick a
// winner when two directories claim the same experiment.
func (s Status) Rank() int {
	switch s {
	case Completed:
		return 3
	case Failed:
		return 2
	case Running:
		return 1
	}
	return 0
}

// OverheadKind says whether a record's overhead is known.
type OverheadKind uint8

const (
	// OverheadUndefined renders as N/A.
	OverheadUndefined OverheadKind = iota
	// OverheadBaseline marks the group's reference record.
	OverheadBaseline
	// OverheadPercent carries a computed percentage.
	OverheadPercent
)

// Overhead is a record's elapsed-time increase over its group baseline.
type Overhead struct {
	Kind    OverheadKind
	Percent float64
}

// Record is one experiment as observed in a single scan.
type Record struct {
	Benchmark   string
	Latency     int64
	Dir         string
	Name        string
	Status      Status
	Error       string
	Metrics     artifact.Values
	Overhead    Overhead
	Placeholder bool
}

// SimSeconds returns the simulated elapsed time, if the stats file had one.
func (r Record) SimSeconds() (float64, bool) {
	return r.Metrics.Float(artifact.SimSeconds)
}

// Group is one benchmark's records, ordered by latency.
type Group struct {
	Name    string
	Records []Record
}

// Sort orders records ascending by latency, then by directory name.
func (g *Group) Sort() {
	sort.SliceStable(g.Records, func(i, j int) bool {
		a, b := g.Records[i], g.Records[j]
		if a.Latency != b.Latency {
			return a.Latency < b.Latency
		}
		return a.Name < b.Name
	})
}

// Count returns how many records in g have status s.
func (g Group) Count(s Status) int {
	n := 0
	for _, r := range g.Records {
		if r.Status == s {
			n++
		}
	}
	return n
}

// Load reads the artifacts of dir and classifies it.
func Load(dir, benchmark string, latency int64) Record {
	rec := Record{
		Benchmark: benchmark,
		Latency:   latency,
		Dir:       dir,
		Name:      filepath.Base(dir),
		Metrics:   artifact.Values{},
	}

	var ev Evidence
	if rl, ok := artifact.ReadRunLog(filepath.Join(dir, artifact.RunLogFile)); ok {
		ev.Log = &rl
	}
	if stats, ok := artifact.ReadStats(filepath.Join(dir, artifact.StatsFile)); ok {
		ev.Stats = stats
		rec.Metrics.Merge(stats)
	}
	if ev.Log != nil {
		rec.Metrics.Merge(ev.Log.Values)
	}

	rec.Status, rec.Error = Classify(ev)
	return rec
}

// Placeholder returns a pending record for an expected experiment that has
// no directory yet.
func Placeholder(root, benchmark string, latency int64) Record {
	name := PlaceholderName(latency)
	return Record{
		Benchmark:   benchmark,
		Latency:     latency,
		Dir:         filepath.Join(root, benchmark, name),
		Name:        name,
		Status:      Pending,
		Metrics:     artifact.Values{},
		Placeholder: true,
	}
}
