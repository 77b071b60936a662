package war

import "math/bits"

// Speed returns the instruction rate for the given Energy:
// 0 when empty, otherwise 1+floor(log2(energy)) capped at MaxSpeed.
func Speed(energy uint16) int {
	if energy == 0 {
		return 0
	}

	speed := bits.Len16(energy)
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}
