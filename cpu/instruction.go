package cpu

import (
	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/memory"
)

// Instruction defines decoded instruction data.
type Instruction struct {
	IP       memory.Address // Instruction address.
	Opcode   byte           // Instruction opcode.
	Rep      byte           // REPZ/REPNZ prefix, or 0.
	ModRM    byte           // Indirect-addressing byte, if HasModRM.
	HasModRM bool
}

// Name returns the instruction mnemonic.
func (i *Instruction) Name() string {
	return arch.Describe(i.Opcode, i.ModRM)
}

// width describes the operand size of an instruction.
type width struct {
	bytes int
	bits  uint
	mask  uint32
	sign  uint32
}

var (
	byteWidth = width{1, 8, 0xff, 0x80}
	wordWidth = width{2, 16, 0xffff, 0x8000}
)

// widthOf returns the operand size selected by the low opcode bit.
func widthOf(op byte) width {
	if op&1 != 0 {
		return wordWidth
	}
	return byteWidth
}

// signExtend widens an 8-bit value to 16 bits.
func signExtend(v byte) uint16 {
	return uint16(int16(int8(v)))
}

// next8 reads the byte at CS:IP through the execute channel and advances IP.
func (c *CPU) next8() byte {
	a := memory.NewAddress(c.CS(), c.IP)
	c.IP++
	if c.err != nil {
		return 0
	}
	v, err := c.mem.Exec8(a)
	if err != nil {
		c.err = err
	}
	return v
}

// next16 reads a little-endian word at CS:IP and advances IP.
func (c *CPU) next16() uint16 {
	a := memory.NewAddress(c.CS(), c.IP)
	c.IP += 2
	if c.err != nil {
		return 0
	}
	v, err := c.mem.Exec16(a)
	if err != nil {
		c.err = err
	}
	return v
}

// nextImm reads an immediate of the given width.
func (c *CPU) nextImm(w width) uint32 {
	if w.bytes == 1 {
		return uint32(c.next8())
	}
	return uint32(c.next16())
}

// operand is a decoded indirect-addressing byte. Its accessors behave the
// same whether the r/m part names memory or a register.
type operand struct {
	c    *CPU
	mode arch.Submode
	reg  int            // RRR field.
	rm   int            // III field.
	addr memory.Address // Effective address when mode != arch.Direct.
}

// decodeModRM reads the indirect-addressing byte at CS:IP along with any
// displacement and resolves the effective address.
func (c *CPU) decodeModRM() *operand {
	b := c.next8()
	c.instr.ModRM = b
	c.instr.HasModRM = true

	op := &c.operand
	*op = operand{
		c:    c,
		mode: arch.Submode(b >> 6),
		reg:  int(b>>3) & 7,
		rm:   int(b) & 7,
	}

	if op.mode == arch.Direct {
		return op
	}

	bi := arch.Resolve(op.mode, op.rm)

	var off uint16
	if bi.Base != arch.NoRegister {
		off += c.Reg16(bi.Base)
	}
	if bi.Index != arch.NoRegister {
		off += c.Reg16(bi.Index)
	}

	switch op.mode.Displacement(op.rm) {
	case 1:
		off += signExtend(c.next8())
	case 2:
		off += c.next16()
	}

	op.addr = memory.NewAddress(c.Seg(bi.Segment), off)
	return op
}

// isMem returns true if the r/m part refers to memory.
func (o *operand) isMem() bool {
	return o.mode != arch.Direct
}

// address returns the effective address. Register operands have none and
// fault with InvalidOpcode.
func (o *operand) address() memory.Address {
	if !o.isMem() {
		o.c.fail(InvalidOpcode)
	}
	return o.addr
}

// rmValue reads the r/m operand.
func (o *operand) rmValue(w width) uint32 {
	if o.isMem() {
		return o.c.read(w, o.addr)
	}
	return o.c.reg(w, o.rm)
}

// setRM writes the r/m operand.
func (o *operand) setRM(w width, v uint32) {
	if o.isMem() {
		o.c.write(w, o.addr, v)
	} else {
		o.c.setReg(w, o.rm, v)
	}
}

func (o *operand) rm8() byte { return byte(o.rmValue(byteWidth)) }
func (o *operand) rm16() uint16 { return uint16(o.rmValue(wordWidth)) }
func (o *operand) setRM8(v byte) { o.setRM(byteWidth, uint32(v)) }
func (o *operand) setRM16(v uint16) { o.setRM(wordWidth, uint32(v)) }

// regValue reads the register selected by the RRR field.
func (o *operand) regValue(w width) uint32 {
	return o.c.reg(w, o.reg)
}

// setRegValue writes the register selected by the RRR field.
func (o *operand) setRegValue(w width, v uint32) {
	o.c.setReg(w, o.reg, v)
}

// seg reads the segment register selected by the RRR field.
func (o *operand) seg() uint16 {
	return o.c.Seg(o.reg)
}

// setSeg writes the segment register selected by the RRR field.
func (o *operand) setSeg(v uint16) {
	o.c.SetSeg(o.reg, v)
}
