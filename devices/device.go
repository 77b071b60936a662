package devices

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/arena/memory"
)

// BombCounters is the number of virtual counters gating the devices.
const BombCounters = 3

// ErrExhausted is returned when a device's counter has reached zero.
var ErrExhausted = errors.New("virtual interrupt exhausted")

// Memory is the checked memory interface a device can use.
type Memory interface {
	Read8(memory.Address) (byte, error)
	Read16(memory.Address) (uint16, error)
	Write8(memory.Address, byte) error
	Write16(memory.Address, uint16) error
}

// Machine exposes the CPU state a device operates on.
type Machine interface {
	Reg16(index int) uint16
	SetReg16(index int, v uint16)
	Seg(index int) uint16
	Energy() uint16
	SetEnergy(v uint16)
	Bomb(n int) uint8
	SetBomb(n int, v uint8)
	Memory() Memory
}

// Device represents a virtual interrupt handler.
type Device interface {
	// Kind yields the closed device tag, which determines the
	// interrupt vector it services.
	Kind() Kind

	// Int triggers an interrupt on the device and is called
	// through a program's INT instruction.
	Int(Machine) error
}

// Map contains the registered devices, keyed by kind.
// It is built once when a machine is constructed.
type Map struct {
	devs [numKinds]Device
}

// NewMap creates a registry holding the given devices.
func NewMap(devs ...Device) *Map {
	var dm Map
	for _, dev := range devs {
		dm.Connect(dev)
	}
	return &dm
}

// Connect adds the given device to the device map.
// Returns false if the device kind is already present.
func (dm *Map) Connect(dev Device) bool {
	k := dev.Kind()
	if k >= numKinds || dm.devs[k] != nil {
		return false
	}
	dm.devs[k] = dev
	return true
}

// Find returns the device servicing the given interrupt vector.
func (dm *Map) Find(vector byte) (Device, bool) {
	if dm == nil {
		return nil, false
	}
	k, ok := KindForVector(vector)
	if !ok || dm.devs[k] == nil {
		return nil, false
	}
	return dm.devs[k], true
}

// Int triggers the interrupt with the given vector. Returns false if no
// device services it.
//
// The device's counter is consumed before it runs; an exhausted counter
// yields ErrExhausted.
func (dm *Map) Int(vector byte, m Machine) (bool, error) {
	dev, ok := dm.Find(vector)
	if !ok {
		return false, nil
	}

	n := dev.Kind().Counter()
	if m.Bomb(n) == 0 {
		return true, errors.Wrapf(ErrExhausted, "%s", dev.Kind())
	}
	m.SetBomb(n, m.Bomb(n)-1)

	return true, dev.Int(m)
}

// Len returns the number of connected devices.
func (dm *Map) Len() int {
	var n int
	for _, dev := range dm.devs {
		if dev != nil {
			n++
		}
	}
	return n
}
