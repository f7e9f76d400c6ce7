package procs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const psOutput = `USER         PID %CPU %MEM    VSZ   RSS TTY      STAT START   TIME COMMAND
root           1  0.0  0.0 167744 11684 ?        Ss   Oct18   0:05 /sbin/init
alice      41200 99.8  3.1 912344 512000 pts/2   R+   09:14 120:01 build/ARM/gem5.opt --outdir=BM_ARM_OUT/all_benchmarks_20251229_230316/bfs/latency_100 configs/run.py
alice      41201 98.7  2.9 912344 498000 pts/3   R+   09:14 119:40 build/ARM/gem5.opt configs/run.py
alice      41300  0.0  0.0   6432   720 pts/4   S+   11:02   0:00 grep --color=auto gem5
alice      41301 gem5 truncated
`

func TestParse(t *testing.T) {
	t.Parallel()

	got := Parse(psOutput, "gem5")
	require.Len(t, got, 2)

	assert.Equal(t, Process{
		PID:    "41200",
		CPU:    "99.8",
		Mem:    "3.1",
		OutDir: "BM_ARM_OUT/all_benchmarks_20251229_230316/bfs/latency_100",
	}, got[0])
	assert.Equal(t, "unknown", got[1].OutDir)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		run     runFunc
		want    int
		wantLog string
	}{
		{
			name: "ps output parsed",
			run: func(context.Context) ([]byte, error) {
				return []byte(psOutput), nil
			},
			want: 2,
		},
		{
			name: "ps missing yields empty list",
			run: func(context.Context) ([]byte, error) {
				return nil, errors.New(`exec: "ps": executable file not found in $PATH`)
			},
			want:    0,
			wantLog: "process listing unavailable",
		},
		{
			name: "timeout yields empty list",
			run: func(ctx context.Context) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			want:    0,
			wantLog: "deadline exceeded",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			in := newInspectorWithRun("gem5", tc.run).
				withLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
			in.Timeout = 50 * time.Millisecond

			got := in.Snapshot(context.Background())
			assert.Len(t, got, tc.want)
			if tc.wantLog != "" {
				assert.Contains(t, buf.String(), tc.wantLog)
			}
		})
	}
}
