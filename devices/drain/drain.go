// Package drain implements the energy drain interrupt.
package drain

import (
	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/devices"
)

// Device hands the caller's remaining Energy to AX and clears it (INT 88h).
type Device struct{}

var _ devices.Device = &Device{}

func New() *Device {
	return &Device{}
}

func (d *Device) Kind() devices.Kind {
	return devices.EnergyDrain
}

func (d *Device) Int(m devices.Machine) error {
	m.SetReg16(arch.AX, m.Energy())
	m.SetEnergy(0)
	return nil
}
