package bomb

import (
	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/devices"
	"github.com/hexaflex/arena/memory"
)

// Smart searches a segment for the four bytes AX:DX and overwrites every
// occurrence with BX:CX (INT 87h).
type Smart struct {
	segment uint16 // Segment being searched.
	size    int    // Number of bytes searched from offset 0.
}

var _ devices.Device = &Smart{}

// NewSmart creates a smart bomb searching size bytes of the given segment.
func NewSmart(segment uint16, size int) *Smart {
	if size > memory.SegmentSize {
		size = memory.SegmentSize
	}
	return &Smart{segment: segment, size: size}
}

func (d *Smart) Kind() devices.Kind {
	return devices.SmartBomb
}

// Int performs the search and replace. Matches do not overlap.
func (d *Smart) Int(m devices.Machine) error {
	mem := m.Memory()
	ax := m.Reg16(arch.AX)
	dx := m.Reg16(arch.DX)
	bx := m.Reg16(arch.BX)
	cx := m.Reg16(arch.CX)

	for off := 0; off+4 <= d.size; off++ {
		addr := memory.NewAddress(d.segment, uint16(off))

		lo, err := mem.Read16(addr)
		if err != nil {
			return err
		}
		if lo != ax {
			continue
		}

		hi, err := mem.Read16(addr.AddOffset(2))
		if err != nil {
			return err
		}
		if hi != dx {
			continue
		}

		if err := mem.Write16(addr, bx); err != nil {
			return err
		}
		if err := mem.Write16(addr.AddOffset(2), cx); err != nil {
			return err
		}
		off += 3
	}

	return nil
}
