package war

import (
	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/memory"
)

// Program is one assembled warrior image.
type Program struct {
	Name string
	Code []byte
}

// Team is a group of programs sharing one memory block.
type Team struct {
	Name    string
	Members []Program
}

// Warrior is one program loaded into a war.
type Warrior struct {
	Name   string
	Team   string
	Size   int            // Code size in bytes.
	Load   memory.Address // Where the code was placed.
	Stack  memory.Address // Base of the private stack.
	Shared memory.Address // Base of the team's shared block.
	CPU    *cpu.CPU

	alive bool
	death error
}

// Alive returns true until the warrior faults.
func (w *Warrior) Alive() bool {
	return w.alive
}

// Death returns the fault that killed the warrior, or nil.
func (w *Warrior) Death() error {
	return w.death
}

// init sets up the registers for a fresh warrior.
func (w *Warrior) init(energy uint16) {
	c := w.CPU
	c.SetCS(w.Load.Segment)
	c.SetDS(w.Load.Segment)
	c.SetSS(w.Stack.Segment)
	c.SetSP(StackSize)
	c.SetES(w.Shared.Segment)
	c.SetAX(w.Load.Offset)
	c.IP = w.Load.Offset
	c.SetEnergy(energy)

	for i, v := range InitialBombs {
		c.SetBomb(i, v)
	}
}

// kill marks the warrior dead. Returns false if it already was.
func (w *Warrior) kill(reason error) bool {
	if !w.alive {
		return false
	}
	w.alive = false
	w.death = reason
	return true
}
