package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justin-oleary/simwatch/pkg/config"
	"github.com/justin-oleary/simwatch/pkg/fixture"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRunOneShot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	exps := fixture.Scenarios["matrix"]([]string{"bfs", "gemm"}, []int64{0, 100})
	require.NoError(t, fixture.WriteAll(root, exps))

	o := config.Defaults()
	o.Dir = root
	o.Interval = time.Second
	o.Benchmarks = "bfs,gemm"
	o.Latencies = "0,100"
	o.Format = "json"
	o.Output = "status.json"
	o.ProcessName = "no-such-simulator-binary"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out, quiet()))

	assert.Contains(t, out.String(), "Expected total experiments: 4")
	assert.Contains(t, out.String(), "Summary: Total=4, Completed=1, Running=0, Failed=0")

	b, err := os.ReadFile(filepath.Join(root, "status.json"))
	require.NoError(t, err)
	var doc struct {
		Totals struct {
			Total   int `json:"total"`
			Pending int `json:"pending"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, 4, doc.Totals.Total)
	assert.Equal(t, 3, doc.Totals.Pending)
}

func TestRunMissingDir(t *testing.T) {
	t.Parallel()

	o := config.Defaults()
	o.Dir = filepath.Join(t.TempDir(), "gone")
	o.Interval = time.Second

	var out bytes.Buffer
	err := run(context.Background(), o, &out, quiet())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrDirNotFound)
	assert.Contains(t, out.String(), "Error: cannot resolve monitored directory: directory not found")
	assert.NotContains(t, out.String(), "Monitoring:")
}

func TestRunUnknownFormat(t *testing.T) {
	t.Parallel()

	o := config.Defaults()
	o.Dir = t.TempDir()
	o.Interval = time.Second
	o.Format = "pdf"

	require.Error(t, run(context.Background(), o, io.Discard, quiet()))
}

func TestRunWatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, fixture.WriteAll(root, fixture.Scenarios["running"]([]string{"fft"}, []int64{0, 10})))

	o := config.Defaults()
	o.Dir = root
	o.Watch = true
	o.Interval = time.Second
	o.ProcessName = "no-such-simulator-binary"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, o, io.Discard, quiet()) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, config.DefaultOutput))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRootCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	for _, name := range []string{"latest", "watch", "interval", "output", "format", "benchmarks",
		"latencies", "matrix", "serve", "port", "metrics-addr", "process-name", "base-dir"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "w", cmd.Flags().Lookup("watch").Shorthand)
	assert.Equal(t, "10", cmd.Flags().Lookup("interval").DefValue)
}
