//go:build !unix

package config

import (
	"os"
	"time"
)

// changeTime falls back to the modification time where there is no ctime.
func changeTime(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
