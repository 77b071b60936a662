package devices

import "fmt"

// Kind identifies a virtual interrupt device. The set of kinds is closed.
type Kind byte

// Known device kinds.
const (
	HeavyBomb Kind = iota
	SmartBomb
	EnergyDrain

	numKinds
)

// Vector returns the interrupt vector serviced by the device kind.
func (k Kind) Vector() byte {
	return 0x86 + byte(k)
}

// Counter returns the index of the virtual counter gating the device.
func (k Kind) Counter() int {
	return int(k)
}

// KindForVector returns the device kind servicing the given vector.
// Returns false if the vector is not virtual.
func KindForVector(vector byte) (Kind, bool) {
	if vector < 0x86 || vector >= 0x86+byte(numKinds) {
		return 0, false
	}
	return Kind(vector - 0x86), true
}

func (k Kind) String() string {
	switch k {
	case HeavyBomb:
		return "heavy-bomb"
	case SmartBomb:
		return "smart-bomb"
	case EnergyDrain:
		return "energy-drain"
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}
