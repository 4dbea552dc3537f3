//go:build linux

package loader

import (
	"io/fs"
	"syscall"
	"time"
)

// fileTimes returns the status-change and modification times; Linux stat
// exposes no birth time.
func fileTimes(info fs.FileInfo) (time.Time, time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}

	//nolint:unconvert // int32 fields on 32-bit targets.
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)), info.ModTime()
}
