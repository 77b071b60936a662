package cpu

import (
	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/memory"
)

// opShift handles c0, c1 (count Ib), d0, d1 (count 1) and d2, d3 (count CL).
func opShift(c *CPU) {
	op := c.instr.Opcode
	w := widthOf(op)
	m := c.decodeModRM()
	if m.reg == 6 {
		c.fail(InvalidOpcode)
		return
	}

	var count uint
	switch op {
	case 0xc0, 0xc1:
		count = uint(c.next8())
	case 0xd0, 0xd1:
		count = 1
	default:
		count = uint(c.Reg8(arch.CL))
	}

	v := m.rmValue(w)
	m.setRM(w, c.shift(m.reg, w, v, count))
}

// opGroup3 handles TEST, NOT, NEG, MUL, IMUL, DIV and IDIV on r/m (f6, f7).
func opGroup3(c *CPU) {
	w := widthOf(c.instr.Opcode)
	m := c.decodeModRM()

	switch m.reg {
	case 0:
		v := m.rmValue(w)
		c.logic(w, v&c.nextImm(w))
	case 2:
		m.setRM(w, ^m.rmValue(w)&w.mask)
	case 3:
		v := m.rmValue(w)
		r := c.sub(w, 0, v, 0)
		c.setFlag(arch.FlagCarry, v != 0)
		m.setRM(w, r)
	case 4:
		c.mul(w, m.rmValue(w))
	case 5:
		c.imul(w, m.rmValue(w))
	case 6:
		c.div(w, m.rmValue(w))
	case 7:
		c.idiv(w, m.rmValue(w))
	default:
		c.fail(InvalidOpcode)
	}
}

// mul computes AL*v into AX, or AX*v into DX:AX.
func (c *CPU) mul(w width, v uint32) {
	if c.failed() {
		return
	}

	var high bool
	if w.bytes == 1 {
		r := uint16(c.AL()) * uint16(v)
		c.SetAX(r)
		high = r>>8 != 0
	} else {
		r := uint32(c.AX()) * v
		c.SetAX(uint16(r))
		c.SetDX(uint16(r >> 16))
		high = r>>16 != 0
	}

	c.setFlag(arch.FlagCarry, high)
	c.setFlag(arch.FlagOverflow, high)
}

// imul is the signed form of mul.
func (c *CPU) imul(w width, v uint32) {
	if c.failed() {
		return
	}

	var overflow bool
	if w.bytes == 1 {
		r := int16(int8(c.AL())) * int16(int8(v))
		c.SetAX(uint16(r))
		overflow = r != int16(int8(r))
	} else {
		r := int32(int16(c.AX())) * int32(int16(v))
		c.SetAX(uint16(r))
		c.SetDX(uint16(r >> 16))
		overflow = r != int32(int16(r))
	}

	c.setFlag(arch.FlagCarry, overflow)
	c.setFlag(arch.FlagOverflow, overflow)
}

// div divides AX by an 8-bit value or DX:AX by a 16-bit value. A zero
// divisor or a quotient that does not fit raises a Division fault.
func (c *CPU) div(w width, v uint32) {
	if c.failed() {
		return
	}
	if v == 0 {
		c.fail(Division)
		return
	}

	if w.bytes == 1 {
		n := uint32(c.AX())
		q := n / v
		if q > 0xff {
			c.fail(Division)
			return
		}
		c.SetAL(byte(q))
		c.SetAH(byte(n % v))
		return
	}

	n := uint32(c.DX())<<16 | uint32(c.AX())
	q := n / v
	if q > 0xffff {
		c.fail(Division)
		return
	}
	c.SetAX(uint16(q))
	c.SetDX(uint16(n % v))
}

// idiv is the signed form of div. Quotients outside the signed range of
// the operand width raise a Division fault.
func (c *CPU) idiv(w width, v uint32) {
	if c.failed() {
		return
	}
	if v&w.mask == 0 {
		c.fail(Division)
		return
	}

	if w.bytes == 1 {
		n := int32(int16(c.AX()))
		d := int32(int8(v))
		q := n / d
		if q < -128 || q > 127 {
			c.fail(Division)
			return
		}
		c.SetAL(byte(q))
		c.SetAH(byte(n % d))
		return
	}

	n := int64(int32(uint32(c.DX())<<16 | uint32(c.AX())))
	d := int64(int16(v))
	q := n / d
	if q < -32768 || q > 32767 {
		c.fail(Division)
		return
	}
	c.SetAX(uint16(q))
	c.SetDX(uint16(n % d))
}

// opGroup4 handles INC and DEC on a byte operand (fe).
func opGroup4(c *CPU) {
	m := c.decodeModRM()

	switch m.reg {
	case 0:
		m.setRM8(byte(c.inc(byteWidth, uint32(m.rm8()), 1)))
	case 1:
		m.setRM8(byte(c.inc(byteWidth, uint32(m.rm8()), -1)))
	default:
		c.fail(InvalidOpcode)
	}
}

// opGroup5 handles INC, DEC, CALL, CALL FAR, JMP, JMP FAR and PUSH on a
// word operand (ff).
func opGroup5(c *CPU) {
	m := c.decodeModRM()

	switch m.reg {
	case 0:
		m.setRM16(uint16(c.inc(wordWidth, uint32(m.rm16()), 1)))
	case 1:
		m.setRM16(uint16(c.inc(wordWidth, uint32(m.rm16()), -1)))
	case 2:
		target := m.rm16()
		if c.failed() {
			return
		}
		c.push(c.IP)
		c.IP = target
	case 3:
		off, seg := c.farPointer(m)
		if c.failed() {
			return
		}
		c.push(c.CS())
		c.push(c.IP)
		c.SetCS(seg)
		c.IP = off
	case 4:
		target := m.rm16()
		if c.failed() {
			return
		}
		c.IP = target
	case 5:
		off, seg := c.farPointer(m)
		if c.failed() {
			return
		}
		c.SetCS(seg)
		c.IP = off
	case 6:
		c.push(m.rm16())
	default:
		c.fail(InvalidOpcode)
	}
}

// farPointer reads an offset:segment pair from a memory operand.
func (c *CPU) farPointer(m *operand) (uint16, uint16) {
	a := m.address()
	if c.failed() {
		return 0, 0
	}
	return c.read16(a), c.read16(a.AddOffset(2))
}

// stringStep returns the SI/DI adjustment for one string iteration.
func (c *CPU) stringStep(w width) uint16 {
	if c.DF() {
		return uint16(-w.bytes)
	}
	return uint16(w.bytes)
}

// stringOnce executes a single iteration of the string instruction op.
func (c *CPU) stringOnce(op byte, w width) {
	src := memory.NewAddress(c.DS(), c.SI())
	dst := memory.NewAddress(c.ES(), c.DI())
	step := c.stringStep(w)

	switch op &^ 1 {
	case 0xa4: // MOVS
		c.write(w, dst, c.read(w, src))
		c.SetSI(c.SI() + step)
		c.SetDI(c.DI() + step)
	case 0xa6: // CMPS
		a := c.read(w, src)
		b := c.read(w, dst)
		if !c.failed() {
			c.sub(w, a, b, 0)
		}
		c.SetSI(c.SI() + step)
		c.SetDI(c.DI() + step)
	case 0xaa: // STOS
		c.write(w, dst, c.reg(w, arch.AX))
		c.SetDI(c.DI() + step)
	case 0xac: // LODS
		v := c.read(w, src)
		if !c.failed() {
			c.setReg(w, arch.AX, v)
		}
		c.SetSI(c.SI() + step)
	case 0xae: // SCAS
		b := c.read(w, dst)
		if !c.failed() {
			c.sub(w, c.reg(w, arch.AX), b, 0)
		}
		c.SetDI(c.DI() + step)
	}
}

// opString handles MOVS, CMPS, STOS, LODS and SCAS with optional REP
// prefixes. A repeated instruction runs to completion within one step,
// stopping early on a fault or, for CMPS and SCAS, on the ZF condition.
func opString(c *CPU) {
	op := c.instr.Opcode
	w := widthOf(op)

	if c.instr.Rep == 0 {
		c.stringOnce(op, w)
		return
	}

	compares := op&^1 == 0xa6 || op&^1 == 0xae
	for c.CX() != 0 {
		c.stringOnce(op, w)
		if c.failed() {
			return
		}

		c.SetCX(c.CX() - 1)

		if compares {
			if c.instr.Rep == arch.REPZ && !c.ZF() {
				return
			}
			if c.instr.Rep == arch.REPNZ && c.ZF() {
				return
			}
		}
	}
}
