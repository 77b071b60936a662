// Package war loads groups of warriors into a shared arena and plays them
// against each other, round by round, until at most one remains.
package war

// Arena layout and scheduling parameters.
const (
	ArenaSegment       = 0x1000  // Segment the arena starts at.
	ArenaSize          = 0x10000 // One full segment.
	ArenaByte          = 0xcc    // Arena fill byte (INT3).
	MaxWarriorSize     = 512     // Largest accepted program, in bytes.
	MinGap             = 1024    // Minimum distance between programs and the arena edges.
	StackSize          = 2048    // Private stack per warrior.
	SharedMemorySize   = 1024    // Shared block per team.
	MaxRounds          = 200000  // Default round cap.
	DecelerationRounds = 5       // Energy decays once every this many rounds.
	MaxSpeed           = 16      // Upper bound of Speed.
	MaxLoadingTries    = 100     // Placement attempts per warrior.
)

// InitialBombs holds the starting values of the virtual bomb counters.
var InitialBombs = [3]uint8{2, 1, 0}

// allocBase is the linear address where stacks and shared blocks are handed
// out, directly above the arena.
const allocBase = ArenaSegment<<4 + ArenaSize
