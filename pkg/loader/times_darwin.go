//go:build darwin

package loader

import (
	"io/fs"
	"syscall"
	"time"
)

func fileTimes(info fs.FileInfo) (time.Time, time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}

	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), info.ModTime()
}
