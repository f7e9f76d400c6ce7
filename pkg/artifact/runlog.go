package artifact

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RunLogFile is the captured stdout/stderr of a simulator run.
const RunLogFile = "run.log"

// Run-log markers.
const (
	ExitMarker    = "Exiting @"
	M5ExitMarker  = "m5_exit"
	MaxErrorRunes = 100
)

// Accelerator section field names. Every section repeats the same labels;
// values are aggregated across the whole log.
const (
	ValidationRequests     = "kernelValidationRequests"
	ValidationCacheHits    = "validationCacheHits"
	ValidationsDenied      = "validationsDenied"
	UniquePagesValidated   = "uniquePagesValidated"
	TotalValidationLatency = "totalValidationLatency"
	ValidationEnabled      = "validationEnabled"
	ValidationCacheHitRate = "validationCacheHitRate"
)

// RunLogSchema covers the per-accelerator validation statistics.
var RunLogSchema = []Field{
	{Name: ValidationRequests, Pattern: regexp.MustCompile(`Total validation requests:\s+(\d+)`), Rule: SumInt},
	{Name: ValidationCacheHits, Pattern: regexp.MustCompile(`Validation cache hits:\s+(\d+)`), Rule: SumInt},
	{Name: ValidationsDenied, Pattern: regexp.MustCompile(`Validations denied:\s+(\d+)`), Rule: SumInt},
	{Name: UniquePagesValidated, Pattern: regexp.MustCompile(`Unique pages validated \(total\):\s+(\d+)`), Rule: SumInt},
	{Name: TotalValidationLatency, Pattern: regexp.MustCompile(`Total validation latency:\s+([\d.]+)\s*us`), Rule: SumFloat},
	{Name: ValidationEnabled, Pattern: regexp.MustCompile(`Kernel validation enabled:\s+(YES|NO)`), Rule: AnyTrue},
}

var failureLine = regexp.MustCompile(`(?m)^(?:panic|fatal):(.*)$`)

// RunLog is everything the monitor needs from a run log.
type RunLog struct {
	// Terminal is set when both the exit and m5_exit markers are present.
	Terminal bool
	// Failed is set when a line starts with panic: or fatal:.
	Failed bool
	// Error is the text after the first failure marker, at most MaxErrorRunes.
	Error string
	// NonEmpty is false for a log holding only whitespace.
	NonEmpty bool
	Values   Values
}

// ParseRunLog scans content for termination and failure markers and
// aggregates the accelerator sections.
func ParseRunLog(content string) RunLog {
	rl := RunLog{
		Terminal: strings.Contains(content, ExitMarker) && strings.Contains(content, M5ExitMarker),
		NonEmpty: strings.TrimSpace(content) != "",
		Values:   Extract(RunLogSchema, content),
	}
	if m := failureLine.FindStringSubmatch(content); m != nil {
		rl.Failed = true
		rl.Error = truncateRunes(strings.TrimSpace(m[1]), MaxErrorRunes)
	}
	if rate, ok := CacheHitRate(rl.Values); ok {
		rl.Values[ValidationCacheHitRate] = Value{Rule: SumFloat, Float: rate}
	}
	return rl
}

// ReadRunLog reads and parses the run log at path. ok is false when the log
// is absent or unreadable.
func ReadRunLog(path string) (rl RunLog, ok bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RunLog{}, false
	}
	return ParseRunLog(string(b)), true
}

// CacheHitRate computes hits/(requests+hits)*100 rounded to one decimal.
// ok is false if either input is missing or the denominator is zero.
func CacheHitRate(vs Values) (float64, bool) {
	req, ok1 := vs.Int(ValidationRequests)
	hits, ok2 := vs.Int(ValidationCacheHits)
	if !ok1 || !ok2 || req+hits == 0 {
		return 0, false
	}
	rate := float64(hits) / float64(req+hits) * 100
	return roundTenth(rate), true
}

// FormatRate renders a percentage the way the report shows cache-hit rates.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// roundTenth rounds through the same formatting the report uses so the
// stored number and its rendering always agree.
func roundTenth(x float64) float64 {
	out, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
