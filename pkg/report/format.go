package report

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// FormatTicks abbreviates a tick count: 2.35G, 12.00K, 999.
func FormatTicks(ticks int64) string {
	t := float64(ticks)
	switch {
	case t >= 1e12:
		return fmt.Sprintf("%.2fT", t/1e12)
	case t >= 1e9:
		return fmt.Sprintf("%.2fG", t/1e9)
	case t >= 1e6:
		return fmt.Sprintf("%.2fM", t/1e6)
	case t >= 1e3:
		return fmt.Sprintf("%.2fK", t/1e3)
	}
	return strconv.FormatInt(ticks, 10)
}

// FormatLatency renders a validation latency for the tables.
func FormatLatency(latency int64) string {
	l := float64(latency)
	switch {
	case latency == 0:
		return "No validation"
	case latency >= 1_000_000:
		return fmt.Sprintf("%.1fM cycles", l/1e6)
	case latency >= 1000:
		return fmt.Sprintf("%.0fK cycles", l/1e3)
	}
	return fmt.Sprintf("%d cycles", latency)
}

// FormatSimTime picks the largest unit that keeps the value at or above 1.
func FormatSimTime(secs float64) string {
	switch {
	case secs >= 1:
		return fmt.Sprintf("%.4f s", secs)
	case secs >= 1e-3:
		return fmt.Sprintf("%.4f ms", secs*1e3)
	case secs >= 1e-6:
		return fmt.Sprintf("%.4f µs", secs*1e6)
	case secs >= 1e-9:
		return fmt.Sprintf("%.4f ns", secs*1e9)
	}
	return fmt.Sprintf("%.6e s", secs)
}

// DisplayName is the heading of a benchmark group.
func DisplayName(group string) string {
	if group == defaultGroup {
		return "benchmark"
	}
	return group
}

func baseName(path string) string {
	if path == "" || path == "unknown" {
		return path
	}
	return filepath.Base(path)
}
