package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressLinear(t *testing.T) {
	assert := assert.New(t)

	for _, seg := range []uint16{0, 1, 0x1000, 0x1234, 0xf000, 0xffff} {
		for _, off := range []uint16{0, 1, 0x0005, 0x7fff, 0xfff0, 0xffff} {
			want := (int(seg)*16 + int(off)) % MemorySize
			assert.Equal(want, NewAddress(seg, off).Linear(), "%04x:%04x", seg, off)
		}
	}
}

func TestAddressFromLinear(t *testing.T) {
	assert := assert.New(t)

	a := AddressFromLinear(0x12345)
	assert.Equal(uint16(0x1234), a.Segment)
	assert.Equal(uint16(0x0005), a.Offset)
	assert.Equal("1234:0005", a.String())

	for _, linear := range []int{0, 1, 0xf, 0x10, 0x10000, 0xfffff} {
		assert.Equal(linear, AddressFromLinear(linear).Linear())
	}

	assert.Equal(0, AddressFromLinear(MemorySize).Linear())
}

func TestAddressEquality(t *testing.T) {
	a := NewAddress(0x1000, 0x0010)
	b := NewAddress(0x1001, 0x0000)
	c := NewAddress(0x1001, 0x0001)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Less(b))
	assert.True(t, a.Less(c))
}

func TestAddressAddOffset(t *testing.T) {
	a := NewAddress(0x1000, 0xffff).AddOffset(2)
	assert.Equal(t, NewAddress(0x1000, 0x0001), a)
}

func TestAddressAddAddress(t *testing.T) {
	assert := assert.New(t)

	// No offset overflow: segment is recomputed from the carry.
	a := NewAddress(0x1000, 0x0010).AddAddress(0x20)
	assert.Equal(0x10030, a.Linear())
	assert.Equal(uint16(0x0030), a.Offset)
	assert.Equal(uint16(0x1000), a.Segment)

	// Offset overflow is absorbed into the segment.
	b := NewAddress(0x1000, 0xfff0).AddAddress(0x20)
	assert.Equal(0x20010, b.Linear())
	assert.Equal(uint16(0x0010), b.Offset)
	assert.Equal(uint16(0x2000), b.Segment)

	// Wrapped offset not below the linear result: expressed in segment 0.
	c := NewAddress(0, 0x10).AddAddress(-0x10)
	assert.Equal(NewAddress(0, 0), c)
}
