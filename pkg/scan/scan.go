// Package scan discovers experiment directories under a monitored root,
// groups them by benchmark and fills in the experiments an expected matrix
// says should exist but have not started yet.
package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/justin-oleary/simwatch/pkg/experiment"
)

var latencyPattern = regexp.MustCompile(experiment.LatencyPrefix + `(\d+)`)

// Layout is how experiments are arranged under the root.
type Layout uint8

const (
	// SingleBenchmark: experiment directories sit directly under the root.
	SingleBenchmark Layout = iota
	// MultiBenchmark: each root subdirectory is a benchmark holding experiments.
	MultiBenchmark
)

func (l Layout) String() string {
	if l == MultiBenchmark {
		return "multi-benchmark"
	}
	return "single-benchmark"
}

// Matrix is the expected benchmark × latency cross product.
type Matrix struct {
	Benchmarks []string
	Latencies  []int64
}

// Size returns the number of expected experiments.
func (m Matrix) Size() int {
	return len(m.Benchmarks) * len(m.Latencies)
}

// Result is one scan of the root.
type Result struct {
	Layout Layout
	Groups []experiment.Group
}

// Records returns the total number of records across all groups.
func (r Result) Records() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Records)
	}
	return n
}

// Scanner scans a root directory. Its fields are read-only after
// construction, so one Scanner may be reused across cycles.
type Scanner struct {
	Root   string
	Matrix Matrix
	// AutoLatencies re-detects expected latencies every scan when
	// Matrix.Latencies is empty.
	AutoLatencies bool
	Logger        *slog.Logger
}

// ParseLatency extracts the validation latency encoded in an experiment
// directory name. ok is false when the name carries neither the baseline
// marker nor a latency suffix.
func ParseLatency(name string) (latency int64, ok bool) {
	if strings.Contains(name, experiment.BaselineMarker) {
		return 0, true
	}
	m := latencyPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsExperimentDir reports whether name looks like an experiment directory
// rather than a benchmark directory.
func IsExperimentDir(name string) bool {
	return strings.Contains(name, experiment.BaselineMarker) ||
		strings.Contains(name, experiment.LatencyPrefix)
}

// Scan walks the root once. Unreadable directories are skipped; the scan
// itself never fails.
func (s *Scanner) Scan() Result {
	log := s.logger()
	groups := map[string]map[int64]experiment.Record{}
	layout := SingleBenchmark

	for _, name := range subdirs(s.Root, log) {
		path := filepath.Join(s.Root, name)
		if IsExperimentDir(name) {
			s.add(groups, experiment.DefaultGroup, path, log)
			continue
		}
		layout = MultiBenchmark
		if _, ok := groups[name]; !ok {
			groups[name] = map[int64]experiment.Record{}
		}
		for _, exp := range subdirs(path, log) {
			s.add(groups, name, filepath.Join(path, exp), log)
		}
	}

	if layout == MultiBenchmark {
		m := s.Matrix
		if len(m.Latencies) == 0 && s.AutoLatencies {
			m.Latencies = DetectLatencies(s.Root)
		}
		Reconcile(s.Root, groups, m)
	}

	return Result{Layout: layout, Groups: flatten(groups)}
}

func (s *Scanner) add(groups map[string]map[int64]experiment.Record, bench, dir string, log *slog.Logger) {
	lat, _ := ParseLatency(filepath.Base(dir))
	rec := experiment.Load(dir, bench, lat)

	byLat, ok := groups[bench]
	if !ok {
		byLat = map[int64]experiment.Record{}
		groups[bench] = byLat
	}
	if prev, dup := byLat[lat]; dup {
		keep, drop := prev, rec
		if outranks(rec, prev) {
			keep, drop = rec, prev
		}
		log.Debug("duplicate experiment directory ignored",
			"benchmark", bench, "latency", lat, "kept", keep.Dir, "dropped", drop.Dir)
		byLat[lat] = keep
		return
	}
	byLat[lat] = rec
}

// outranks decides which of two directories claiming the same
// (benchmark, latency) is reported.
func outranks(a, b experiment.Record) bool {
	if a.Status.Rank() != b.Status.Rank() {
		return a.Status.Rank() > b.Status.Rank()
	}
	return a.Name < b.Name
}

// Reconcile adds a pending placeholder for every (benchmark, latency) pair
// of m missing from groups. It does nothing unless both sets are non-empty.
func Reconcile(root string, groups map[string]map[int64]experiment.Record, m Matrix) {
	if len(m.Benchmarks) == 0 || len(m.Latencies) == 0 {
		return
	}
	for _, b := range m.Benchmarks {
		byLat, ok := groups[b]
		if !ok {
			byLat = map[int64]experiment.Record{}
			groups[b] = byLat
		}
		for _, lat := range m.Latencies {
			if _, found := byLat[lat]; !found {
				byLat[lat] = experiment.Placeholder(root, b, lat)
			}
		}
	}
}

// DetectLatencies collects the latencies encoded in root/*/* directory
// names. It returns {0} when nothing is found.
func DetectLatencies(root string) []int64 {
	seen := map[int64]struct{}{}
	benches, err := os.ReadDir(root)
	if err == nil {
		for _, b := range benches {
			if !b.IsDir() {
				continue
			}
			exps, err := os.ReadDir(filepath.Join(root, b.Name()))
			if err != nil {
				continue
			}
			for _, e := range exps {
				if lat, ok := ParseLatency(e.Name()); ok {
					seen[lat] = struct{}{}
				}
			}
		}
	}
	if len(seen) == 0 {
		return []int64{0}
	}
	out := make([]int64, 0, len(seen))
	for lat := range seen {
		out = append(out, lat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func flatten(groups map[string]map[int64]experiment.Record) []experiment.Group {
	out := make([]experiment.Group, 0, len(groups))
	for name, byLat := range groups {
		if len(byLat) == 0 {
			continue
		}
		g := experiment.Group{Name: name, Records: make([]experiment.Record, 0, len(byLat))}
		for _, r := range byLat {
			g.Records = append(g.Records, r)
		}
		g.Sort()
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// subdirs lists visible subdirectory names of dir in lexical order.
func subdirs(dir string, log *slog.Logger) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug("read dir failed", "dir", dir, "err", err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	return out
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
