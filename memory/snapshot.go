package memory

import (
	"io"

	"github.com/pkg/errors"
)

// MinZeroRun is the shortest run of zero bytes the snapshot format skips.
// Shorter runs are stored inline.
const MinZeroRun = 8

// endOfSnapshot terminates the run list.
const endOfSnapshot = -1

// SaveSnapshot writes a sparse encoding of p to w: a sequence of
// (start int32, length int32, bytes) runs terminated by start = -1.
func SaveSnapshot(w io.Writer, p []byte) (err error) {
	defer recoverOnPanic(&err)

	for i := 0; i < len(p); {
		if p[i] == 0 {
			i++
			continue
		}

		start := i
		last := i
		for j := i; j < len(p); j++ {
			if p[j] != 0 {
				last = j
			} else if j-last >= MinZeroRun {
				break
			}
		}

		writeI32(w, int32(start))
		writeI32(w, int32(last+1-start))
		writeBytes(w, p[start:last+1])
		i = last + 1
	}

	writeI32(w, endOfSnapshot)
	return
}

// LoadSnapshot clears p and fills it with the runs read from r.
func LoadSnapshot(r io.Reader, p []byte) (err error) {
	defer recoverOnPanic(&err)

	for i := range p {
		p[i] = 0
	}

	for {
		start := int(readI32(r))
		if start == endOfSnapshot {
			return
		}

		size := int(readI32(r))
		if start < 0 || size < 0 || start+size > len(p) {
			return errors.Errorf("snapshot: run %d+%d out of range", start, size)
		}

		copy(p[start:], readBytes(r, size))
	}
}

// Save writes a snapshot of the whole memory bank.
func (m *RealModeMemory) Save(w io.Writer) error {
	return SaveSnapshot(w, m.data)
}

// Restore replaces the memory contents with a snapshot.
func (m *RealModeMemory) Restore(r io.Reader) error {
	return LoadSnapshot(r, m.data)
}
