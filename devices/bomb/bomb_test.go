package bomb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/devices/bomb"
	"github.com/hexaflex/arena/memory"
)

const segment = 0x1000

func newMachine(access memory.Access) (*cpu.CPU, *memory.RealModeMemory) {
	mem := memory.New(access)
	c := cpu.New(mem, nil, nil)
	c.SetES(segment)
	return c, mem
}

func TestHeavy(t *testing.T) {
	c, mem := newMachine(nil)
	c.SetAX(0x0102)
	c.SetDX(0x0304)
	c.SetDI(0x20)

	require.NoError(t, bomb.NewHeavy().Int(c))
	assert.Equal(t, uint16(0x20), c.DI())

	base := segment<<memory.ParagraphShift + 0x20
	data := mem.Bytes()
	for i := 0; i < bomb.HeavyRepeat; i++ {
		assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, data[base+i*4:base+i*4+4])
	}
	assert.Equal(t, byte(0), data[base+bomb.HeavyRepeat*4])
}

func TestHeavyFault(t *testing.T) {
	ac := memory.NewAccessControl(0)
	require.NoError(t, ac.Grant(segment<<memory.ParagraphShift, 16, memory.PermRW))

	c, mem := newMachine(ac)
	c.SetAX(0xffff)

	err := bomb.NewHeavy().Int(c)
	f, ok := memory.IsFault(err)
	require.True(t, ok)
	assert.Equal(t, memory.Write, f.Channel)
	assert.Equal(t, memory.NewAddress(segment, 16), f.Address)

	// Bytes written before the fault stay written.
	assert.Equal(t, byte(0xff), mem.Bytes()[segment<<memory.ParagraphShift+12])
}

func TestSmart(t *testing.T) {
	c, mem := newMachine(nil)
	base := segment << memory.ParagraphShift
	mem.Load(base+0x10, []byte{0xaa, 0xbb, 0xcc, 0xdd})
	mem.Load(base+0x100, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xcc, 0xdd})
	mem.Load(base+0x200, []byte{0xaa, 0xbb, 0xcc, 0x00})

	c.SetAX(0xbbaa)
	c.SetDX(0xddcc)
	c.SetBX(0x2211)
	c.SetCX(0x4433)

	require.NoError(t, bomb.NewSmart(segment, memory.SegmentSize).Int(c))

	data := mem.Bytes()
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, data[base+0x10:base+0x14])
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44, 0xcc, 0xdd}, data[base+0x100:base+0x106])
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0x00}, data[base+0x200:base+0x204])
}

func TestSmartFault(t *testing.T) {
	ac := memory.NewAccessControl(0)
	require.NoError(t, ac.Grant(segment<<memory.ParagraphShift, 0x100, memory.PermRW))

	c, _ := newMachine(ac)
	_, ok := memory.IsFault(bomb.NewSmart(segment, memory.SegmentSize).Int(c))
	assert.True(t, ok)
}
