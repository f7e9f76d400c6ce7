package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justin-oleary/simwatch/pkg/artifact"
)

func TestWriteKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind      Kind
		wantLog   bool
		wantStats bool
		logHas    string
	}{
		{kind: Pending},
		{kind: Empty, wantLog: true},
		{kind: Running, wantLog: true, logHas: "Starting simulation"},
		{kind: Completed, wantLog: true, wantStats: true, logHas: "m5_exit"},
		{kind: Failed, wantLog: true, logHas: "fatal: out of memory"},
		{kind: StatsOnly, wantLog: true, wantStats: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			dir, err := Write(root, Experiment{Benchmark: "bfs", Latency: 100, Kind: tc.kind, SimSeconds: 0.002})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, "bfs", "latency_100"), dir)

			log, err := os.ReadFile(filepath.Join(dir, artifact.RunLogFile))
			assert.Equal(t, tc.wantLog, err == nil)
			if tc.logHas != "" {
				assert.Contains(t, string(log), tc.logHas)
			}
			_, err = os.Stat(filepath.Join(dir, artifact.StatsFile))
			assert.Equal(t, tc.wantStats, err == nil)
		})
	}
}

func TestWriteUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Write(t.TempDir(), Experiment{Kind: "exploded"})
	require.Error(t, err)
}

func TestArtifactsParseBack(t *testing.T) {
	t.Parallel()

	e := Experiment{
		Latency:    1000,
		SimSeconds: 0.0025,
		Sections: []Section{
			{Enabled: true, Requests: 5, Hits: 5, Pages: 2, LatencyUS: 1.25},
			{Enabled: false, Requests: 5, Hits: 0, Pages: 1, LatencyUS: 0.5},
		},
	}

	rl := artifact.ParseRunLog(RunLog(e, true))
	assert.True(t, rl.Terminal)
	req, ok := rl.Values.Int(artifact.ValidationRequests)
	require.True(t, ok)
	assert.Equal(t, int64(10), req)
	enabled, ok := rl.Values.Bool(artifact.ValidationEnabled)
	require.True(t, ok)
	assert.True(t, enabled)

	stats := artifact.ParseStats(Stats(e.SimSeconds))
	secs, ok := stats.Float(artifact.SimSeconds)
	require.True(t, ok)
	assert.Equal(t, 0.0025, secs)
	_, ok = stats.Int(artifact.SimTicks)
	assert.True(t, ok)
}

func TestScenarioNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "completed,failed,matrix,mixed,running", strings.Join(ScenarioNames(), ","))
	assert.Equal(t, "baseline_no_validation", DirName(0))
	assert.Equal(t, "latency_25", DirName(25))
}
