// Package memory implements the segmented real-mode address space shared
// by all warriors, along with its access control.
package memory

import "fmt"

const (
	ParagraphSize  = 16      // Bytes per segment unit.
	ParagraphShift = 4       // log2(ParagraphSize).
	AddressWidth   = 20      // Bits in a linear address.
	MemorySize     = 1 << 20 // Size of the linear address space.
	SegmentSize    = 0x10000 // Bytes addressable through one segment.
)

// Address is an immutable segment:offset pair.
// Equality and ordering are defined by the linear address.
type Address struct {
	Segment uint16
	Offset  uint16
}

// NewAddress creates an address from its segment and offset.
func NewAddress(segment, offset uint16) Address {
	return Address{Segment: segment, Offset: offset}
}

// AddressFromLinear creates an address for the given linear address,
// using the highest possible segment. e.g.: 0x12345 becomes 1234:0005.
func AddressFromLinear(linear int) Address {
	linear = wrap(linear)
	seg := linear >> ParagraphShift
	if seg > 0xffff {
		seg = 0xffff
	}
	return Address{
		Segment: uint16(seg),
		Offset:  uint16(linear - seg<<ParagraphShift),
	}
}

// Linear returns the linear address.
func (a Address) Linear() int {
	return wrap(int(a.Segment)*ParagraphSize + int(a.Offset))
}

// AddOffset returns a new address with delta added to the offset.
// The segment is not renormalized.
func (a Address) AddOffset(delta int) Address {
	return Address{
		Segment: a.Segment,
		Offset:  uint16(int(a.Offset) + delta),
	}
}

// AddAddress returns a new address delta bytes further. Offset overflow is
// carried into the segment only when the wrapped offset stays below the
// resulting linear address; otherwise the result is expressed in segment 0.
func (a Address) AddAddress(delta int) Address {
	adr := a.Linear() + delta
	off := (delta + int(a.Offset)) & 0xffff

	if off < adr {
		return Address{
			Segment: uint16((adr - off) >> ParagraphShift),
			Offset:  uint16(off),
		}
	}

	return Address{Segment: 0, Offset: uint16(adr)}
}

// Equal returns true if both addresses map to the same linear address.
func (a Address) Equal(b Address) bool {
	return a.Linear() == b.Linear()
}

// Less returns true if a maps below b.
func (a Address) Less(b Address) bool {
	return a.Linear() < b.Linear()
}

func (a Address) String() string {
	return fmt.Sprintf("%04X:%04X", a.Segment, a.Offset)
}

func wrap(linear int) int {
	linear %= MemorySize
	if linear < 0 {
		linear += MemorySize
	}
	return linear
}
