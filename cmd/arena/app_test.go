package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexaflex/arena/memory"
	"github.com/hexaflex/arena/war"
)

func TestRunOnceSnapshot(t *testing.T) {
	dir := t.TempDir()
	imp := []byte{0xeb, 0xfe}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imp"), imp, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dud"), []byte{0x31, 0xdb, 0xf7, 0xf3}, 0o644))

	snaps := filepath.Join(t.TempDir(), "snaps")
	app := NewApp(&Config{
		Dir:         dir,
		Wars:        1,
		Teams:       2,
		Seed:        7,
		Rounds:      50,
		Parallel:    1,
		SnapshotDir: snaps,
	})

	require.NoError(t, app.runOnce(context.Background()))

	fd, err := os.Open(filepath.Join(snaps, "war-7.snap"))
	require.NoError(t, err)
	defer fd.Close()

	mem := memory.New(memory.NewAccessControl(memory.DefaultRegionCapacity))
	require.NoError(t, mem.Restore(fd))

	arena := mem.Bytes()[arenaBase : arenaBase+war.ArenaSize]
	assert.Equal(t, byte(war.ArenaByte), arena[0])
	assert.True(t, bytes.Contains(arena, imp))
}

func TestRunOnceMissingDir(t *testing.T) {
	app := NewApp(&Config{Dir: filepath.Join(t.TempDir(), "nope"), Wars: 1, Teams: 2})
	assert.Error(t, app.runOnce(context.Background()))
}

func TestHidden(t *testing.T) {
	assert.True(t, hidden("/tmp/warriors/.imp.swp"))
	assert.False(t, hidden("/tmp/warriors/imp"))
}
