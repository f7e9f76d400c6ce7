package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment overrides. Flags win over all of them.
const (
	EnvBaseDir  = "SIMWATCH_BASE_DIR"
	EnvInterval = "SIMWATCH_INTERVAL" // seconds
	EnvLogLevel = "SIMWATCH_LOG_LEVEL"
)

// DefaultBaseDir is where simulator batches write their output trees.
const DefaultBaseDir = "BM_ARM_OUT"

// BaseDir returns the directory searched by --latest.
func BaseDir() string {
	return envString(EnvBaseDir, DefaultBaseDir)
}

// Interval returns the default refresh interval.
func Interval() time.Duration {
	return envDuration(EnvInterval, 10*time.Second)
}

// LogLevel parses SIMWATCH_LOG_LEVEL (debug, info, warn, error). Unknown or
// empty values give info.
func LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(os.Getenv(EnvLogLevel)))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func envString(key, def string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return def
}

// envDuration reads a whole number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	if n := envInt(key, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}
