package experiment

import "strconv"

// Directory naming used by the experiment launcher.
const (
	BaselineMarker = "baseline"
	LatencyPrefix  = "latency_"
	BaselineDir    = "baseline_no_validation"
)

// PlaceholderName returns the directory name the launcher would create for a
// latency value.
func PlaceholderName(latency int64) string {
	if latency == 0 {
		return BaselineDir
	}
	return LatencyPrefix + strconv.FormatInt(latency, 10)
}
