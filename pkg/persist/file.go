package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm   = 0o755
	tmpSuffix = ".tmp"
)

// SaveFile encodes v with codec and writes it to path atomically: the data
// goes to a sibling temp file that is synced and renamed over path. Parent
// directories are created as needed.
func SaveFile(path string, codec Codec, v any) error {
	mkErr := os.MkdirAll(filepath.Dir(path), dirPerm)
	if mkErr != nil {
		return fmt.Errorf("create parent dir: %w", mkErr)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+tmpSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := f.Name()

	encErr := codec.Encode(f, v)
	if encErr != nil {
		f.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("encode %s: %w", path, encErr)
	}

	syncErr := f.Sync()
	if syncErr != nil {
		f.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("sync %s: %w", tmpPath, syncErr)
	}

	closeErr := f.Close()
	if closeErr != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("close %s: %w", tmpPath, closeErr)
	}

	renameErr := os.Rename(tmpPath, path)
	if renameErr != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("rename %s: %w", path, renameErr)
	}

	return nil
}

// LoadFile decodes the file at path into v, which must be a pointer.
// A missing file yields an error satisfying errors.Is(err, fs.ErrNotExist).
func LoadFile(path string, codec Codec, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	decErr := codec.Decode(f, v)
	if decErr != nil {
		return fmt.Errorf("decode %s: %w", path, decErr)
	}

	return nil
}
