// Package fixture writes experiment directories shaped like the ones a
// simulator batch produces. It backs the package tests and cmd/simfixture.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/justin-oleary/simwatch/pkg/artifact"
)

// Kind selects which artifacts an experiment directory gets.
type Kind string

const (
	// Pending creates the directory only.
	Pending Kind = "pending"
	// Empty creates an empty run log.
	Empty Kind = "empty"
	// Running writes a partial log with no exit markers.
	Running Kind = "running"
	// Completed writes a terminal log and a stats file.
	Completed Kind = "completed"
	// Failed writes a log ending in a fatal line.
	Failed Kind = "failed"
	// StatsOnly writes a partial log plus a stats file, as seen when the log
	// has not been flushed yet.
	StatsOnly Kind = "stats-only"
)

// Section is one accelerator's validation block.
type Section struct {
	Enabled   bool
	Requests  int64
	Hits      int64
	Denied    int64
	Pages     int64
	LatencyUS float64
}

// Experiment describes one directory to write.
type Experiment struct {
	Benchmark  string // empty writes directly under the root
	Latency    int64
	Name       string // overrides the launcher's directory name
	Kind       Kind
	SimSeconds float64
	Sections   []Section
	Error      string // Failed only
}

// Dir returns the path Write would create under root.
func (e Experiment) Dir(root string) string {
	name := e.Name
	if name == "" {
		name = DirName(e.Latency)
	}
	if e.Benchmark == "" {
		return filepath.Join(root, name)
	}
	return filepath.Join(root, e.Benchmark, name)
}

// DirName is the launcher's directory name for a latency value.
func DirName(latency int64) string {
	if latency == 0 {
		return "baseline_no_validation"
	}
	return "latency_" + strconv.FormatInt(latency, 10)
}

// Write creates the experiment directory and its artifacts under root and
// returns the directory path.
func Write(root string, e Experiment) (string, error) {
	dir := e.Dir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	var log, stats string
	switch e.Kind {
	case Pending, "":
		return dir, nil
	case Empty:
		log = ""
	case Running:
		log = RunLog(e, false)
	case Completed:
		log = RunLog(e, true)
		stats = Stats(e.SimSeconds)
	case Failed:
		msg := e.Error
		if msg == "" {
			msg = "out of memory"
		}
		log = RunLog(e, false) + "fatal: " + msg + "\n"
	case StatsOnly:
		log = RunLog(e, false)
		stats = Stats(e.SimSeconds)
	default:
		return "", fmt.Errorf("unknown fixture kind %q", e.Kind)
	}

	if err := os.WriteFile(filepath.Join(dir, artifact.RunLogFile), []byte(log), 0o644); err != nil {
		return "", fmt.Errorf("write run log: %w", err)
	}
	if stats != "" {
		if err := os.WriteFile(filepath.Join(dir, artifact.StatsFile), []byte(stats), 0o644); err != nil {
			return "", fmt.Errorf("write stats: %w", err)
		}
	}
	return dir, nil
}

// WriteAll writes every experiment, stopping at the first error.
func WriteAll(root string, exps []Experiment) error {
	for _, e := range exps {
		if _, err := Write(root, e); err != nil {
			return err
		}
	}
	return nil
}

// RunLog renders a run log body. terminal appends the exit markers.
func RunLog(e Experiment, terminal bool) string {
	var b strings.Builder
	b.WriteString("gem5 Simulator System.  https://www.gem5.org\n")
	b.WriteString("info: Entering event queue @ 0.  Starting simulation...\n")
	for i, s := range e.Sections {
		fmt.Fprintf(&b, "==== Accelerator %d ====\n", i)
		enabled := "NO"
		if s.Enabled {
			enabled = "YES"
		}
		fmt.Fprintf(&b, "Kernel validation enabled:       %s\n", enabled)
		fmt.Fprintf(&b, "Total validation requests:       %d\n", s.Requests)
		fmt.Fprintf(&b, "Validation cache hits:           %d\n", s.Hits)
		fmt.Fprintf(&b, "Validations denied:              %d\n", s.Denied)
		fmt.Fprintf(&b, "Unique pages validated (total):  %d\n", s.Pages)
		fmt.Fprintf(&b, "Total validation latency:        %.2f us\n", s.LatencyUS)
	}
	if terminal {
		ticks := int64(e.SimSeconds * 1e12)
		fmt.Fprintf(&b, "Exiting @ tick %d because m5_exit instruction encountered\n", ticks)
	}
	return b.String()
}

// Stats renders a minimal stats.txt for the given simulated time.
func Stats(simSeconds float64) string {
	ticks := int64(simSeconds * 1e12)
	return fmt.Sprintf(`
---------- Begin Simulation Statistics ----------
simSeconds                                   %g                       # Number of seconds simulated (Second)
simTicks                                     %d                       # Number of ticks simulated (Tick)
finalTick                                    %d                       # Number of ticks from beginning of simulation (Tick)
simFreq                                      1000000000000            # The number of ticks per simulated second ((Tick/Second))
---------- End Simulation Statistics   ----------
`, simSeconds, ticks, ticks)
}
