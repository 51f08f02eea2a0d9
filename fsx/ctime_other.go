//go:build !linux && !darwin

package fsx

import (
	"os"
	"time"
)

// Platforms without a portable change time fall back to the modification
// time.
func changeTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
