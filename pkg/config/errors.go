package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOutputDir is returned when no directory was given and none could
	// be found under the base directory.
	ErrNoOutputDir = errors.New("no output directory found")

	// ErrDirNotFound is returned when the monitored directory does not exist
	// or is not a directory.
	ErrDirNotFound = errors.New("directory not found")

	// ErrBadLatency is returned when an expected latency is not a
	// non-negative integer.
	ErrBadLatency = errors.New("invalid latency")

	// ErrBadInterval is returned for a non-positive refresh interval.
	ErrBadInterval = errors.New("invalid refresh interval")

	// ErrBadMatrixFile is returned when the matrix file cannot be read or
	// decoded.
	ErrBadMatrixFile = errors.New("invalid matrix file")
)

// IsResolveErr reports whether err means the monitor has nothing to watch
// and should exit.
func IsResolveErr(err error) bool {
	return errors.Is(err, ErrNoOutputDir) ||
		errors.Is(err, ErrDirNotFound) ||
		errors.Is(err, ErrBadLatency) ||
		errors.Is(err, ErrBadInterval) ||
		errors.Is(err, ErrBadMatrixFile)
}

// ResolveError wraps a sentinel with the path or value that caused it.
// errors.Is sees the sentinel through Unwrap; errors.As recovers Subject for
// the diagnostic.
type ResolveError struct {
	Cause   error
	Subject string // directory, file or raw value
	Detail  error  // underlying error, if any
}

func (e *ResolveError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Cause, e.Subject, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Cause, e.Subject)
}

func (e *ResolveError) Unwrap() error { return e.Cause }
