package artifact

import (
	"os"
	"regexp"
)

// StatsFile is the statistics dump the simulator writes when a run ends.
const StatsFile = "stats.txt"

// Stats field names.
const (
	SimTicks   = "simTicks"
	SimSeconds = "simSeconds"
)

// StatsSchema recognises keys anchored at line start. Unknown keys are ignored.
var StatsSchema = []Field{
	{Name: SimTicks, Pattern: regexp.MustCompile(`(?m)^simTicks\s+(\d+)`), Rule: FirstMatch},
	{Name: SimSeconds, Pattern: regexp.MustCompile(`(?m)^simSeconds\s+([\d.eE+-]+)`), Rule: FirstMatch},
}

// ParseStats extracts StatsSchema from the contents of a stats file.
func ParseStats(content string) Values {
	return Extract(StatsSchema, content)
}

// ReadStats reads and parses the stats file at path. ok is false when the
// file is absent or unreadable.
func ReadStats(path string) (vs Values, ok bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return ParseStats(string(b)), true
}
