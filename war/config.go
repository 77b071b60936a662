package war

import "github.com/hexaflex/arena/cpu"

// Config holds the settings for a single war.
type Config struct {
	Seed      int64 // Seeds placement and the extra-instruction trials.
	MaxRounds int   // Round cap; MaxRounds when zero.
	Energy    uint16

	// Pacer is called at every round boundary before the round runs.
	// It may block to slow the war down for an observer.
	Pacer func(round int)

	// Trace, when set, receives every executed instruction.
	Trace func(w *Warrior, i *cpu.Instruction)
}

func (c *Config) roundCap() int {
	if c.MaxRounds <= 0 {
		return MaxRounds
	}
	return c.MaxRounds
}
