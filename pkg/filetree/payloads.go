package filetree

// Payloads is the run-owned array of file contents addressed by BinaryIndex.
// A nil slot means the file was dropped; empty files hold a non-nil empty slice.
type Payloads [][]byte

// Append stores data and returns its slot index.
func (p *Payloads) Append(data []byte) int {
	if data == nil {
		data = []byte{}
	}

	*p = append(*p, data)

	return len(*p) - 1
}

// Get returns the bytes at idx and whether the slot is live.
func (p Payloads) Get(idx int) ([]byte, bool) {
	if idx < 0 || idx >= len(p) || p[idx] == nil {
		return nil, false
	}

	return p[idx], true
}

// Drop nulls the slot at idx. Out-of-range indices are ignored.
func (p Payloads) Drop(idx int) {
	if idx < 0 || idx >= len(p) {
		return
	}

	p[idx] = nil
}

// Live returns the number of non-dropped slots.
func (p Payloads) Live() int {
	n := 0

	for _, b := range p {
		if b != nil {
			n++
		}
	}

	return n
}
