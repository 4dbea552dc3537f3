//go:build !linux && !darwin

package loader

import (
	"io/fs"
	"time"
)

func fileTimes(info fs.FileInfo) (time.Time, time.Time) {
	return info.ModTime(), info.ModTime()
}
