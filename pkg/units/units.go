// Package units provides binary size unit multipliers (1024-based) and
// human-readable size parsing for configuration values.
package units

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Binary size multipliers.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// ErrSizeOverflow is returned when a parsed size does not fit in an int64.
var ErrSizeOverflow = errors.New("size exceeds int64 range")

// ParseSize parses a human-readable size such as "4GiB", "512 MB" or "1024".
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}

	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s", ErrSizeOverflow, s)
	}

	return int64(n), nil
}

// FormatSize renders a byte count using IEC units.
func FormatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}

	return humanize.IBytes(uint64(n))
}
