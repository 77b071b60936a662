package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessEmpty(t *testing.T) {
	ac := NewAccessControl(0)
	assert.False(t, ac.Check(0, 1, PermRead))
	assert.False(t, ac.Check(0x12345, 1, PermNone|PermExec))
	assert.Equal(t, PermNone, ac.Perm(0))
}

func TestAccessGrant(t *testing.T) {
	ac := NewAccessControl(0)
	require.NoError(t, ac.Grant(0x10100, 0x200, PermRWX))

	for x := 0x10100; x < 0x10300; x += 0x11 {
		assert.True(t, ac.Check(x, 1, PermRWX), "%05x", x)
	}
	assert.True(t, ac.Check(0x102ff, 1, PermExec))
	assert.False(t, ac.Check(0x100ff, 1, PermRead))
	assert.False(t, ac.Check(0x10300, 1, PermRead))
	assert.False(t, ac.Check(0x102ff, 2, PermRead))
}

func TestAccessChannelsAreIndependent(t *testing.T) {
	ac := NewAccessControl(0)
	require.NoError(t, ac.Grant(0x20000, 0x800, PermRW))

	assert.True(t, ac.CheckRead(0x20000))
	assert.True(t, ac.CheckWrite(0x20000))
	assert.False(t, ac.CheckExecute(0x20000))
}

func TestAccessMerge(t *testing.T) {
	ac := NewAccessControl(0)
	require.NoError(t, ac.Grant(0x1000, 0x100, PermRW))
	require.NoError(t, ac.Grant(0x1100, 0x100, PermRW))

	assert.Equal(t, []Region{
		{0, 0x1000, PermNone},
		{0x1000, 0x1200, PermRW},
	}, ac.Regions())
	assert.True(t, ac.Check(0x1000, 0x200, PermRW))
}

func TestAccessSplit(t *testing.T) {
	ac := NewAccessControl(0)
	require.NoError(t, ac.Grant(0x1000, 0x300, PermRW))
	require.NoError(t, ac.Grant(0x1100, 0x100, PermRWX))

	assert.Equal(t, []Region{
		{0, 0x1000, PermNone},
		{0x1000, 0x1100, PermRW},
		{0x1100, 0x1200, PermRWX},
		{0x1200, 0x1300, PermRW},
	}, ac.Regions())

	assert.True(t, ac.Check(0x1000, 0x300, PermRW))
	assert.False(t, ac.Check(0x1000, 0x300, PermExec))
	assert.True(t, ac.Check(0x1150, 0x10, PermExec))

	// Revoking the middle restores a single hole.
	require.NoError(t, ac.Grant(0x1100, 0x100, PermRW))
	assert.Len(t, ac.Regions(), 2)
}

func TestAccessRevokeTail(t *testing.T) {
	ac := NewAccessControl(0)
	require.NoError(t, ac.Grant(0x1000, 0x100, PermRW))
	require.NoError(t, ac.Grant(0x1000, 0x100, PermNone))
	assert.Equal(t, 0, ac.Len())
}

func TestAccessCapacity(t *testing.T) {
	ac := NewAccessControl(4)
	require.NoError(t, ac.Grant(0x100, 0x10, PermRW))
	require.NoError(t, ac.Grant(0x200, 0x10, PermRW))
	before := ac.Regions()

	err := ac.Grant(0x300, 0x10, PermRW)
	assert.Equal(t, ErrTooManyRegions, err)
	assert.Equal(t, before, ac.Regions())
	assert.False(t, ac.Check(0x300, 1, PermRead))
}

func TestAccessClipsToAddressSpace(t *testing.T) {
	ac := NewAccessControl(0)
	require.NoError(t, ac.Grant(MemorySize-0x10, 0x100, PermRead))
	assert.True(t, ac.Check(MemorySize-1, 1, PermRead))
	assert.True(t, ac.Check(MemorySize-0x10, 0x100, PermRead))
}
