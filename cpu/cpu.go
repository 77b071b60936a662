// Package cpu implements the real-mode 8086 subset executed by warriors.
package cpu

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/devices"
	"github.com/hexaflex/arena/memory"
)

// MaxPrefixes is the number of prefix bytes one instruction may carry.
// Together with the opcode this matches the 15 byte instruction length limit.
const MaxPrefixes = 14

// TraceFunc represents a callback handler for debug trace output.
type TraceFunc func(*Instruction)

// Memory is the checked memory bank the CPU runs on.
type Memory interface {
	Read8(memory.Address) (byte, error)
	Read16(memory.Address) (uint16, error)
	Write8(memory.Address, byte) error
	Write16(memory.Address, uint16) error
	Exec8(memory.Address) (byte, error)
	Exec16(memory.Address) (uint16, error)
}

// CPU executes instructions for one warrior. All decoder state lives in the
// CPU value, so independent CPUs can run concurrently.
type CPU struct {
	Registers

	mem     Memory       // Shared memory bank.
	devices *devices.Map // Virtual interrupt handlers.
	trace   TraceFunc    // Handler for debug trace output.
	instr   Instruction  // Instruction being executed.
	operand operand      // Decoded indirect operand of instr.
	err     error        // First fault raised by the current instruction.
}

// New creates a new CPU running on the given memory bank.
// Optionally with the given device map and debug trace handler.
func New(mem Memory, devs *devices.Map, trace TraceFunc) *CPU {
	if trace == nil {
		trace = func(*Instruction) { /* nop */ }
	}

	return &CPU{
		mem:     mem,
		devices: devs,
		trace:   trace,
	}
}

// Memory returns the memory bank the CPU runs on.
func (c *CPU) Memory() devices.Memory {
	return c.mem
}

// Instruction returns the most recently decoded instruction.
func (c *CPU) Instruction() Instruction {
	return c.instr
}

// Step executes a single instruction, including its prefixes.
//
// Returns a *Fault for invalid, unimplemented or faulting instructions and a
// *memory.Fault for access violations. State changes made before the fault
// are not rolled back.
func (c *CPU) Step() error {
	c.err = nil
	c.instr = Instruction{IP: memory.NewAddress(c.CS(), c.IP)}

	op := c.next8()
	for n := 0; arch.Lookup(op).Class == arch.Prefix && c.err == nil; n++ {
		if n == MaxPrefixes {
			c.instr.Opcode = op
			return c.fault(InvalidOpcode)
		}
		c.instr.Rep = op
		op = c.next8()
	}

	if c.err != nil {
		return c.err
	}

	c.instr.Opcode = op

	switch arch.Lookup(op).Class {
	case arch.Invalid:
		return c.fault(InvalidOpcode)
	case arch.Unimplemented:
		return c.fault(Unimplemented)
	}

	ops[op](c)
	c.trace(&c.instr)
	return c.err
}

// fault creates a fault for the current instruction.
func (c *CPU) fault(kind FaultKind) error {
	return &Fault{Instruction: c.instr, Kind: kind}
}

// fail records a fault unless one is already pending.
func (c *CPU) fail(kind FaultKind) {
	if c.err == nil {
		c.err = c.fault(kind)
	}
}

// failed returns true if the current instruction has faulted.
func (c *CPU) failed() bool {
	return c.err != nil
}

// read reads memory through the read channel. Once the instruction has
// faulted, reads yield zero.
func (c *CPU) read(w width, a memory.Address) uint32 {
	if c.err != nil {
		return 0
	}

	var v uint32
	var err error

	if w.bytes == 1 {
		var b byte
		b, err = c.mem.Read8(a)
		v = uint32(b)
	} else {
		var h uint16
		h, err = c.mem.Read16(a)
		v = uint32(h)
	}

	if err != nil {
		c.err = err
		return 0
	}
	return v
}

// write writes memory through the write channel. Once the instruction has
// faulted, writes are dropped.
func (c *CPU) write(w width, a memory.Address, v uint32) {
	if c.err != nil {
		return
	}

	var err error
	if w.bytes == 1 {
		err = c.mem.Write8(a, byte(v))
	} else {
		err = c.mem.Write16(a, uint16(v))
	}

	if err != nil {
		c.err = err
	}
}

func (c *CPU) read8(a memory.Address) byte { return byte(c.read(byteWidth, a)) }
func (c *CPU) read16(a memory.Address) uint16 { return uint16(c.read(wordWidth, a)) }
func (c *CPU) write8(a memory.Address, v byte) { c.write(byteWidth, a, uint32(v)) }
func (c *CPU) write16(a memory.Address, v uint16) { c.write(wordWidth, a, uint32(v)) }

// reg reads a general register of the given width.
func (c *CPU) reg(w width, i int) uint32 {
	if w.bytes == 1 {
		return uint32(c.Reg8(i))
	}
	return uint32(c.Reg16(i))
}

// setReg writes a general register of the given width.
func (c *CPU) setReg(w width, i int, v uint32) {
	if w.bytes == 1 {
		c.SetReg8(i, byte(v))
	} else {
		c.SetReg16(i, uint16(v))
	}
}

// push pushes a word onto SS:SP.
func (c *CPU) push(v uint16) {
	sp := c.SP() - 2
	c.SetSP(sp)
	c.write16(memory.NewAddress(c.SS(), sp), v)
}

// pop pops a word from SS:SP.
func (c *CPU) pop() uint16 {
	sp := c.SP()
	v := c.read16(memory.NewAddress(c.SS(), sp))
	c.SetSP(sp + 2)
	return v
}

// jump adds a relative displacement to IP.
func (c *CPU) jump(rel uint16) {
	c.IP += rel
}

// interrupt performs an interrupt. Virtual vectors are handed to the device
// map; anything else dispatches through the vector table at 0000:0000.
func (c *CPU) interrupt(vector byte) {
	if c.err != nil {
		return
	}

	handled, err := c.devices.Int(vector, c)
	if handled {
		if err != nil {
			if errors.Is(err, devices.ErrExhausted) {
				c.fail(InvalidOpcode)
			} else {
				c.err = err
			}
		}
		return
	}

	ivt := memory.NewAddress(0, uint16(vector)*4)
	ip := c.read16(ivt)
	cs := c.read16(ivt.AddOffset(2))
	if c.err != nil {
		return
	}

	c.push(c.Flags)
	c.push(c.CS())
	c.push(c.IP)
	c.setFlag(arch.FlagInterrupt, false)
	c.setFlag(arch.FlagTrap, false)
	c.SetCS(cs)
	c.IP = ip
}
