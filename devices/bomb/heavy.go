// Package bomb implements the arena's bombing interrupts.
package bomb

import (
	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/devices"
	"github.com/hexaflex/arena/memory"
)

// HeavyRepeat is the number of AX:DX pairs a heavy bomb writes.
const HeavyRepeat = 64

// Heavy writes HeavyRepeat copies of AX:DX to ES:DI (INT 86h).
// DI is left unchanged.
type Heavy struct{}

var _ devices.Device = &Heavy{}

// NewHeavy creates a heavy bomb device.
func NewHeavy() *Heavy {
	return &Heavy{}
}

func (d *Heavy) Kind() devices.Kind {
	return devices.HeavyBomb
}

// Int writes the bomb pattern through the machine's checked memory.
func (d *Heavy) Int(m devices.Machine) error {
	mem := m.Memory()
	ax := m.Reg16(arch.AX)
	dx := m.Reg16(arch.DX)
	addr := memory.NewAddress(m.Seg(arch.ES), m.Reg16(arch.DI))

	for i := 0; i < HeavyRepeat; i++ {
		if err := mem.Write16(addr, ax); err != nil {
			return err
		}
		addr = addr.AddOffset(2)
		if err := mem.Write16(addr, dx); err != nil {
			return err
		}
		addr = addr.AddOffset(2)
	}

	return nil
}
