// simfixture writes a fake simulator output tree for trying out simwatch
// without running a simulation batch.
//
// Usage:
//
//	simfixture --scenario=<name> --out=<dir> [--benchmarks=a,b] [--latencies=0,100]
//
// Scenarios:
//
//	completed   every experiment finished with stats
//	running     baselines finished, everything else mid-run
//	failed      the highest latency of each benchmark hit a fatal error
//	mixed       every lifecycle state, with some experiments not started
//	matrix      only the first benchmark's baseline exists
//
// After writing, the tree is scanned back and each experiment's observed
// status is compared with the one its artifacts were written for. The JSON
// report on stdout lists both; the verdict is CONSISTENT when they all agree.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/justin-oleary/simwatch/pkg/config"
	"github.com/justin-oleary/simwatch/pkg/experiment"
	"github.com/justin-oleary/simwatch/pkg/fixture"
	"github.com/justin-oleary/simwatch/pkg/scan"
)

// written is one generated experiment and what the monitor made of it.
type written struct {
	Benchmark string `json:"benchmark"`
	Latency   int64  `json:"latency"`
	Kind      string `json:"kind"`
	Dir       string `json:"dir"`
	Expected  string `json:"expected_status"`
	Observed  string `json:"observed_status"`
}

type reportSummary struct {
	Written      int            `json:"written"`
	Placeholders int            `json:"placeholders"`
	ByStatus     map[string]int `json:"by_status"`
	Mismatches   int            `json:"mismatches"`
	Verdict      string         `json:"verdict"` // "CONSISTENT" | "MISMATCH"
}

type report struct {
	Timestamp   string        `json:"timestamp"`
	Hostname    string        `json:"hostname"`
	Scenario    string        `json:"scenario"`
	Root        string        `json:"root"`
	Benchmarks  []string      `json:"benchmarks"`
	Latencies   []int64       `json:"latencies"`
	Experiments []written     `json:"experiments"`
	Summary     reportSummary `json:"summary"`
}

// expectedStatus is what the classifier should infer from each kind of
// artifact set.
var expectedStatus = map[fixture.Kind]experiment.Status{
	fixture.Pending:   experiment.Pending,
	fixture.Empty:     experiment.Pending,
	fixture.Running:   experiment.Running,
	fixture.Completed: experiment.Completed,
	fixture.Failed:    experiment.Failed,
	fixture.StatsOnly: experiment.Completed,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		scenarioName string
		out          string
		benchmarks   string
		latencies    string
	)

	cmd := &cobra.Command{
		Use:          "simfixture",
		Short:        "Write a fake simulator output tree",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fn, ok := fixture.Scenarios[scenarioName]
			if !ok {
				return fmt.Errorf("unknown scenario %q (valid: %s)", scenarioName,
					strings.Join(fixture.ScenarioNames(), ", "))
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			lats, err := config.ParseLatencies(latencies)
			if err != nil {
				return err
			}
			benches := config.ParseList(benchmarks)
			if len(benches) == 0 || len(lats) == 0 {
				return fmt.Errorf("--benchmarks and --latencies must not be empty")
			}

			r, err := generate(scenarioName, fn, out, benches, lats)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), r)
		},
	}

	f := cmd.Flags()
	f.StringVar(&scenarioName, "scenario", "mixed", "tree layout: "+strings.Join(fixture.ScenarioNames(), ", "))
	f.StringVar(&out, "out", "", "directory to write the tree into")
	f.StringVar(&benchmarks, "benchmarks", "bfs,fft,gemm", "benchmarks, comma-separated")
	f.StringVar(&latencies, "latencies", "0,100,1000,10000", "latencies, comma-separated")
	return cmd
}

// generate writes the scenario under out and scans it back.
func generate(name string, fn fixture.Scenario, out string, benches []string, lats []int64) (report, error) {
	exps := fn(benches, lats)
	if err := fixture.WriteAll(out, exps); err != nil {
		return report{}, err
	}
	root, err := filepath.Abs(out)
	if err != nil {
		return report{}, err
	}

	s := &scan.Scanner{Root: root, Matrix: scan.Matrix{Benchmarks: benches, Latencies: lats}}
	observed := map[string]experiment.Record{}
	res := s.Scan()
	for _, g := range res.Groups {
		for _, rec := range g.Records {
			observed[rec.Dir] = rec
		}
	}

	hostname, _ := os.Hostname()
	r := report{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hostname:   hostname,
		Scenario:   name,
		Root:       root,
		Benchmarks: benches,
		Latencies:  lats,
	}
	for _, e := range exps {
		w := written{
			Benchmark: e.Benchmark,
			Latency:   e.Latency,
			Kind:      string(e.Kind),
			Dir:       e.Dir(root),
			Expected:  string(expectedStatus[e.Kind]),
		}
		if rec, ok := observed[w.Dir]; ok {
			w.Observed = string(rec.Status)
		}
		r.Experiments = append(r.Experiments, w)
	}
	r.Summary = summarize(r.Experiments, res)
	return r, nil
}

// summarize counts observed statuses across the whole scan and flags
// experiments whose observed status differs from the expected one.
func summarize(ws []written, res scan.Result) reportSummary {
	s := reportSummary{Written: len(ws), ByStatus: map[string]int{}}
	for _, g := range res.Groups {
		for _, rec := range g.Records {
			s.ByStatus[string(rec.Status)]++
			if rec.Placeholder {
				s.Placeholders++
			}
		}
	}
	for _, w := range ws {
		if w.Observed != w.Expected {
			s.Mismatches++
		}
	}
	s.Verdict = "CONSISTENT"
	if s.Mismatches > 0 {
		s.Verdict = "MISMATCH"
	}
	return s
}

func encode(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
