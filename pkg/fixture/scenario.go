package fixture

import "sort"

// Scenario builds the experiments for a benchmark × latency matrix.
type Scenario func(benchmarks []string, latencies []int64) []Experiment

// Scenarios maps CLI names to experiment layouts. Simulated times grow with
// latency so the rendered overheads look plausible.
var Scenarios = map[string]Scenario{
	// completed: every cell finished with stats.
	"completed": func(benchmarks []string, latencies []int64) []Experiment {
		return each(benchmarks, latencies, func(b string, lat int64, i int) Experiment {
			return completedAt(b, lat, i)
		})
	},

	// running: baselines done, everything else still writing its log.
	"running": func(benchmarks []string, latencies []int64) []Experiment {
		return each(benchmarks, latencies, func(b string, lat int64, i int) Experiment {
			if lat == 0 {
				return completedAt(b, lat, i)
			}
			return Experiment{Benchmark: b, Latency: lat, Kind: Running, Sections: sections(lat, 1)}
		})
	},

	// failed: the highest latency of each benchmark runs out of memory.
	"failed": func(benchmarks []string, latencies []int64) []Experiment {
		top := maxLatency(latencies)
		return each(benchmarks, latencies, func(b string, lat int64, i int) Experiment {
			if lat == top && lat != 0 {
				return Experiment{Benchmark: b, Latency: lat, Kind: Failed, Error: "out of memory"}
			}
			return completedAt(b, lat, i)
		})
	},

	// mixed: walks the benchmarks through every lifecycle state, leaving some
	// cells unwritten so the reconciler has placeholders to add.
	"mixed": func(benchmarks []string, latencies []int64) []Experiment {
		kinds := []Kind{Completed, Completed, Running, StatsOnly, Failed, Empty}
		var out []Experiment
		n := 0
		for bi, b := range benchmarks {
			for li, lat := range latencies {
				if (bi+li)%4 == 3 {
					continue // not started
				}
				k := kinds[n%len(kinds)]
				if lat == 0 {
					k = Completed
				}
				e := completedAt(b, lat, li)
				e.Kind = k
				out = append(out, e)
				n++
			}
		}
		return out
	},

	// matrix: only the first benchmark's baseline exists.
	"matrix": func(benchmarks []string, latencies []int64) []Experiment {
		if len(benchmarks) == 0 {
			return nil
		}
		return []Experiment{completedAt(benchmarks[0], 0, 0)}
	},
}

// ScenarioNames returns the registered scenario names, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(Scenarios))
	for n := range Scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func each(benchmarks []string, latencies []int64, fn func(string, int64, int) Experiment) []Experiment {
	out := make([]Experiment, 0, len(benchmarks)*len(latencies))
	for _, b := range benchmarks {
		for i, lat := range latencies {
			out = append(out, fn(b, lat, i))
		}
	}
	return out
}

// completedAt returns a finished run whose simulated time is 2ms plus 4% per
// latency step.
func completedAt(benchmark string, latency int64, step int) Experiment {
	return Experiment{
		Benchmark:  benchmark,
		Latency:    latency,
		Kind:       Completed,
		SimSeconds: 0.002 * (1 + 0.04*float64(step)),
		Sections:   sections(latency, 2),
	}
}

func sections(latency int64, n int) []Section {
	out := make([]Section, n)
	for i := range out {
		if latency == 0 {
			out[i] = Section{Enabled: false}
			continue
		}
		out[i] = Section{
			Enabled:   true,
			Requests:  90,
			Hits:      10,
			Denied:    int64(i),
			Pages:     12,
			LatencyUS: float64(latency) / 1000,
		}
	}
	return out
}

func maxLatency(latencies []int64) int64 {
	var m int64
	for _, l := range latencies {
		if l > m {
			m = l
		}
	}
	return m
}
