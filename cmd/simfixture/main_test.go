package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justin-oleary/simwatch/pkg/fixture"
)

func TestScenariosClassifyAsWritten(t *testing.T) {
	t.Parallel()

	benches := []string{"bfs", "fft", "gemm"}
	lats := []int64{0, 100, 1000, 10000}

	for _, name := range fixture.ScenarioNames() {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := generate(name, fixture.Scenarios[name], t.TempDir(), benches, lats)
			require.NoError(t, err)

			assert.Equal(t, "CONSISTENT", r.Summary.Verdict, "%+v", r.Experiments)
			assert.Zero(t, r.Summary.Mismatches)

			total := 0
			for _, n := range r.Summary.ByStatus {
				total += n
			}
			assert.Equal(t, len(benches)*len(lats), total)
			assert.Equal(t, total-r.Summary.Written, r.Summary.Placeholders)
		})
	}
}

func TestRootCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--scenario=failed", "--out=" + t.TempDir(), "--benchmarks=nw", "--latencies=0,50"})
	require.NoError(t, cmd.Execute())

	var r report
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, "failed", r.Scenario)
	assert.Equal(t, 1, r.Summary.ByStatus["failed"])
	assert.Equal(t, 1, r.Summary.ByStatus["completed"])
}

func TestRootCmdRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"--scenario=nope", "--out=x"},
		{"--scenario=mixed"},
		{"--scenario=mixed", "--out=x", "--latencies=a"},
		{"--scenario=mixed", "--out=x", "--benchmarks="},
	}
	for _, args := range cases {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), "%v", args)
	}
}
