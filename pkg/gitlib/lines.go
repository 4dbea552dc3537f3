package gitlib

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineStats returns the number of lines added and deleted going from
// oldData to newData.
func LineStats(oldData, newData []byte) (added, deleted int) {
	if len(oldData) == 0 && len(newData) == 0 {
		return 0, 0
	}

	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(string(oldData), string(newData))
	diffs := dmp.DiffMainRunes(src, dst, false)

	for _, d := range diffs {
		// Each rune stands for one line.
		n := len([]rune(d.Text))

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			deleted += n
		case diffmatchpatch.DiffEqual:
		}
	}

	return added, deleted
}
