// Package safeconv provides integer conversions that refuse to overflow.
package safeconv

import (
	"errors"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("safeconv: integer overflow")

// Uint64ToInt64 converts an untrusted uint64 (archive headers, blob sizes)
// to int64, reporting ErrOverflow instead of wrapping.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, ErrOverflow
	}

	return int64(v), nil
}

// SizeToUint64 converts a byte count to uint64; negative counts become zero.
func SizeToUint64(v int64) uint64 {
	if v < 0 {
		return 0
	}

	return uint64(v)
}
