package memory

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := make([]byte, 0x4000)

	// Random clumps of data separated by zero runs of every length up to 20.
	for i := 0; i < len(src); {
		n := rng.Intn(32)
		for j := 0; j < n && i < len(src); j++ {
			src[i] = byte(rng.Intn(256))
			i++
		}
		i += rng.Intn(20)
	}

	var buf bytes.Buffer
	require.NoError(t, SaveSnapshot(&buf, src))

	dst := bytes.Repeat([]byte{0xcc}, len(src))
	require.NoError(t, LoadSnapshot(&buf, dst))
	assert.True(t, bytes.Equal(src, dst))
}

func TestSnapshotShortZeroRunsInline(t *testing.T) {
	src := make([]byte, 64)
	src[3] = 1
	src[10] = 2 // 6 zero bytes between: stored inline.
	src[30] = 3 // 19 zero bytes between: skipped.

	var buf bytes.Buffer
	require.NoError(t, SaveSnapshot(&buf, src))

	// Two runs: (3, 8, ...) and (30, 1, ...) plus terminator.
	assert.Equal(t, (4+4+8)+(4+4+1)+4, buf.Len())

	dst := make([]byte, len(src))
	require.NoError(t, LoadSnapshot(&buf, dst))
	assert.Equal(t, src, dst)
}

func TestSnapshotMemory(t *testing.T) {
	m := New(nil)
	m.Fill(0x10000, 0x10000, 0xcc)
	m.Load(0x10100, []byte{1, 2, 3, 0, 0, 4})

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	n := New(nil)
	require.NoError(t, n.Restore(&buf))
	assert.True(t, bytes.Equal(m.Bytes(), n.Bytes()))
}

func TestSnapshotTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveSnapshot(&buf, []byte{0, 1, 2, 3}))

	data := buf.Bytes()[:6]
	err := LoadSnapshot(bytes.NewReader(data), make([]byte, 4))
	assert.Error(t, err)
}
