package scan

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justin-oleary/simwatch/pkg/experiment"
	"github.com/justin-oleary/simwatch/pkg/fixture"
)

func TestParseLatency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		want   int64
		wantOK bool
	}{
		{name: "baseline_no_validation", want: 0, wantOK: true},
		{name: "baseline", want: 0, wantOK: true},
		{name: "latency_100", want: 100, wantOK: true},
		{name: "run3_latency_25000_v2", want: 25000, wantOK: true},
		{name: "latency_", want: 0, wantOK: false},
		{name: "m5out", want: 0, wantOK: false},
		{name: "latency_99999999999999999999", want: 0, wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseLatency(tc.name)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func TestScanSingleBenchmark(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, fixture.WriteAll(root, []fixture.Experiment{
		{Latency: 0, Kind: fixture.Completed, SimSeconds: 0.002},
		{Latency: 1000, Kind: fixture.Running},
		{Latency: 100, Kind: fixture.Failed},
	}))
	// the rendered report lives next to the experiments and must be ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "experiment_status.html"), []byte("x"), 0o644))

	s := &Scanner{Root: root, Matrix: Matrix{Benchmarks: []string{"a"}, Latencies: []int64{0, 5}}}
	res := s.Scan()

	assert.Equal(t, SingleBenchmark, res.Layout)
	require.Len(t, res.Groups, 1, "matrix is ignored in single-benchmark mode")
	g := res.Groups[0]
	assert.Equal(t, experiment.DefaultGroup, g.Name)

	require.Len(t, g.Records, 3)
	assert.Equal(t, int64(0), g.Records[0].Latency)
	assert.Equal(t, experiment.Completed, g.Records[0].Status)
	assert.Equal(t, int64(100), g.Records[1].Latency)
	assert.Equal(t, experiment.Failed, g.Records[1].Status)
	assert.Equal(t, int64(1000), g.Records[2].Latency)
	assert.Equal(t, experiment.Running, g.Records[2].Status)
}

func TestScanReconcilesMatrix(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := fixture.Write(root, fixture.Experiment{Benchmark: "A", Latency: 0, Kind: fixture.Completed, SimSeconds: 0.002})
	require.NoError(t, err)

	s := &Scanner{Root: root, Matrix: Matrix{Benchmarks: []string{"A", "B"}, Latencies: []int64{0, 100}}}
	res := s.Scan()

	assert.Equal(t, MultiBenchmark, res.Layout)
	assert.Equal(t, s.Matrix.Size(), res.Records())
	assert.Equal(t, 4, res.Records())

	pending := 0
	for _, g := range res.Groups {
		for _, r := range g.Records {
			if r.Status == experiment.Pending {
				pending++
				assert.True(t, r.Placeholder)
				assert.Empty(t, r.Metrics)
			}
		}
	}
	assert.Equal(t, 3, pending)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, "A", res.Groups[0].Name)
	assert.Equal(t, "B", res.Groups[1].Name)
	assert.Equal(t, filepath.Join(root, "B", "latency_100"), res.Groups[1].Records[1].Dir)
}

func TestScanAutoDetectsLatencies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, fixture.WriteAll(root, []fixture.Experiment{
		{Benchmark: "bfs", Latency: 0, Kind: fixture.Completed, SimSeconds: 0.002},
		{Benchmark: "bfs", Latency: 500, Kind: fixture.Running},
		{Benchmark: "fft", Latency: 0, Kind: fixture.Running},
	}))

	s := &Scanner{Root: root, Matrix: Matrix{Benchmarks: []string{"bfs", "fft", "nw"}}, AutoLatencies: true}
	res := s.Scan()

	require.Len(t, res.Groups, 3)
	assert.Equal(t, 6, res.Records())
	for _, g := range res.Groups {
		require.Len(t, g.Records, 2, g.Name)
		assert.Equal(t, int64(0), g.Records[0].Latency)
		assert.Equal(t, int64(500), g.Records[1].Latency)
	}

	// without auto-detection and no latencies there is nothing to reconcile
	s.AutoLatencies = false
	assert.Equal(t, 3, s.Scan().Records())
}

func TestScanCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, fixture.WriteAll(root, []fixture.Experiment{
		{Benchmark: "gemm", Name: "baseline_a", Kind: fixture.Running},
		{Benchmark: "gemm", Name: "baseline_b", Kind: fixture.Completed, SimSeconds: 0.002},
		{Benchmark: "gemm", Name: "latency_10", Kind: fixture.Running},
		{Benchmark: "gemm", Name: "latency_10_retry", Kind: fixture.Running},
	}))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res := (&Scanner{Root: root, Logger: logger}).Scan()

	require.Len(t, res.Groups, 1)
	recs := res.Groups[0].Records
	require.Len(t, recs, 2, "one record per (benchmark, latency)")
	assert.Equal(t, "baseline_b", recs[0].Name, "completed outranks running")
	assert.Equal(t, "latency_10", recs[1].Name, "ties go to the smaller name")
	assert.Contains(t, buf.String(), "duplicate experiment directory ignored")
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()

	res := (&Scanner{Root: filepath.Join(t.TempDir(), "gone")}).Scan()
	assert.Empty(t, res.Groups)
	assert.Equal(t, SingleBenchmark, res.Layout)
}

func TestDetectLatencies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	assert.Equal(t, []int64{0}, DetectLatencies(root), "empty tree defaults to baseline only")

	require.NoError(t, fixture.WriteAll(root, []fixture.Experiment{
		{Benchmark: "a", Latency: 10000},
		{Benchmark: "a", Latency: 0},
		{Benchmark: "b", Latency: 100},
		{Benchmark: "b", Name: "plots"},
	}))
	assert.Equal(t, []int64{0, 100, 10000}, DetectLatencies(root))
}

func TestScanIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	exps := fixture.Scenarios["mixed"]([]string{"bfs", "fft", "gemm"}, []int64{0, 100, 1000})
	require.NoError(t, fixture.WriteAll(root, exps))

	s := &Scanner{Root: root, Matrix: Matrix{Benchmarks: []string{"bfs", "fft", "gemm"}, Latencies: []int64{0, 100, 1000}}}
	first, second := s.Scan(), s.Scan()
	assert.Equal(t, first, second)
	assert.Equal(t, 9, first.Records())
}
