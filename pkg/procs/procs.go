// Package procs takes a best-effort snapshot of the simulator processes
// currently running on this host.
package procs

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultName matches the simulator binary in `ps aux` output.
	DefaultName = "gem5"
	// DefaultTimeout bounds the ps invocation.
	DefaultTimeout = 5 * time.Second
	// minFields is the column count of a complete `ps aux` row.
	minFields = 11
)

var outdirFlag = regexp.MustCompile(`--outdir=(\S+)`)

// Process is one observed simulator process.
type Process struct {
	PID    string `json:"pid"`
	CPU    string `json:"cpu"`
	Mem    string `json:"mem"`
	OutDir string `json:"outdir"`
}

// runFunc returns the raw process table. Defined as a type so tests can
// substitute canned ps output.
type runFunc func(ctx context.Context) ([]byte, error)

// Inspector lists processes whose command line contains Name.
type Inspector struct {
	Name    string
	Timeout time.Duration
	run     runFunc
	logger  *slog.Logger
}

// NewInspector returns an Inspector backed by `ps aux`.
func NewInspector(name string) *Inspector {
	if name == "" {
		name = DefaultName
	}
	return &Inspector{Name: name, Timeout: DefaultTimeout, run: psAux, logger: slog.Default()}
}

// newInspectorWithRun injects a canned process table.
// Only for use in unit tests.
func newInspectorWithRun(name string, fn runFunc) *Inspector {
	in := NewInspector(name)
	in.run = fn
	return in
}

// withLogger swaps the inspector's logger.
func (in *Inspector) withLogger(l *slog.Logger) *Inspector {
	in.logger = l
	return in
}

// Snapshot returns the matching processes. Any failure to enumerate yields
// an empty list; it is logged, never returned.
func (in *Inspector) Snapshot(ctx context.Context) []Process {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	out, err := in.run(ctx)
	if err != nil {
		in.logger.Debug("process listing unavailable", "err", err)
		return nil
	}
	return Parse(string(out), in.Name)
}

// Parse extracts matching processes from `ps aux` output. Rows that mention
// grep or have fewer than eleven columns are skipped.
func Parse(out, name string) []Process {
	var procs []Process
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, name) || strings.Contains(line, "grep") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < minFields {
			continue
		}
		p := Process{PID: fields[1], CPU: fields[2], Mem: fields[3], OutDir: "unknown"}
		if m := outdirFlag.FindStringSubmatch(line); m != nil {
			p.OutDir = m[1]
		}
		procs = append(procs, p)
	}
	return procs
}

func psAux(ctx context.Context) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "ps", "aux").Output()
	if err != nil {
		return nil, fmt.Errorf("ps aux: %w", err)
	}
	return out, nil
}
