package cpu

import "github.com/hexaflex/arena/arch"

// ALU operations, in encoding order.
const (
	aluADD = iota
	aluOR
	aluADC
	aluSBB
	aluAND
	aluSUB
	aluXOR
	aluCMP
)

// parity returns true if v has an even number of set bits.
func parity(v byte) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// setSZP sets the sign, zero and parity flags for result r.
func (c *CPU) setSZP(w width, r uint32) {
	c.setFlag(arch.FlagZero, r&w.mask == 0)
	c.setFlag(arch.FlagSign, r&w.sign != 0)
	c.setFlag(arch.FlagParity, parity(byte(r)))
}

// add computes a+b+carry and sets the arithmetic flags.
func (c *CPU) add(w width, a, b, carry uint32) uint32 {
	r := a + b + carry
	c.setFlag(arch.FlagCarry, r > w.mask)
	r &= w.mask
	c.setFlag(arch.FlagOverflow, ^(a^b)&(a^r)&w.sign != 0)
	c.setFlag(arch.FlagAux, (a^b^r)&0x10 != 0)
	c.setSZP(w, r)
	return r
}

// sub computes a-b-borrow and sets the arithmetic flags.
func (c *CPU) sub(w width, a, b, borrow uint32) uint32 {
	r := (a - b - borrow) & w.mask
	c.setFlag(arch.FlagCarry, a < b+borrow)
	c.setFlag(arch.FlagOverflow, (a^b)&(a^r)&w.sign != 0)
	c.setFlag(arch.FlagAux, (a^b^r)&0x10 != 0)
	c.setSZP(w, r)
	return r
}

// logic sets the flags for a logical result.
func (c *CPU) logic(w width, r uint32) uint32 {
	r &= w.mask
	c.setFlag(arch.FlagCarry, false)
	c.setFlag(arch.FlagOverflow, false)
	c.setFlag(arch.FlagAux, false)
	c.setSZP(w, r)
	return r
}

// alu performs one of the eight ALU operations. Returns false if the result
// must not be written back (CMP).
func (c *CPU) alu(op int, w width, a, b uint32) (uint32, bool) {
	var carry uint32
	if c.CF() {
		carry = 1
	}

	switch op {
	case aluADD:
		return c.add(w, a, b, 0), true
	case aluOR:
		return c.logic(w, a|b), true
	case aluADC:
		return c.add(w, a, b, carry), true
	case aluSBB:
		return c.sub(w, a, b, carry), true
	case aluAND:
		return c.logic(w, a&b), true
	case aluSUB:
		return c.sub(w, a, b, 0), true
	case aluXOR:
		return c.logic(w, a^b), true
	}

	c.sub(w, a, b, 0)
	return 0, false
}

// inc adds or subtracts one, leaving the carry flag untouched.
func (c *CPU) inc(w width, v uint32, delta int) uint32 {
	cf := c.CF()
	if delta > 0 {
		v = c.add(w, v, 1, 0)
	} else {
		v = c.sub(w, v, 1, 0)
	}
	c.setFlag(arch.FlagCarry, cf)
	return v
}

// condition evaluates the condition encoded in the low nibble of a Jcc opcode.
func (c *CPU) condition(cc byte) bool {
	var v bool
	switch cc >> 1 {
	case 0:
		v = c.OF()
	case 1:
		v = c.CF()
	case 2:
		v = c.ZF()
	case 3:
		v = c.CF() || c.ZF()
	case 4:
		v = c.SF()
	case 5:
		v = c.PF()
	case 6:
		v = c.SF() != c.OF()
	case 7:
		v = c.ZF() || c.SF() != c.OF()
	}
	if cc&1 != 0 {
		return !v
	}
	return v
}

// shift performs the rotate/shift operation selected by op, count times.
func (c *CPU) shift(op int, w width, v uint32, count uint) uint32 {
	count &= 0x1f
	if count == 0 {
		return v
	}

	msb := func(x uint32) bool { return x&w.sign != 0 }
	cf := c.CF()

	switch op {
	case 0: // ROL
		for i := uint(0); i < count; i++ {
			cf = msb(v)
			v = (v << 1) & w.mask
			if cf {
				v |= 1
			}
		}
		c.setFlag(arch.FlagOverflow, msb(v) != cf)
	case 1: // ROR
		for i := uint(0); i < count; i++ {
			cf = v&1 != 0
			v >>= 1
			if cf {
				v |= w.sign
			}
		}
		c.setFlag(arch.FlagOverflow, msb(v) != msb(v<<1))
	case 2: // RCL
		for i := uint(0); i < count; i++ {
			out := msb(v)
			v = (v << 1) & w.mask
			if cf {
				v |= 1
			}
			cf = out
		}
		c.setFlag(arch.FlagOverflow, msb(v) != cf)
	case 3: // RCR
		for i := uint(0); i < count; i++ {
			out := v&1 != 0
			v >>= 1
			if cf {
				v |= w.sign
			}
			cf = out
		}
		c.setFlag(arch.FlagOverflow, msb(v) != msb(v<<1))
	case 4: // SHL
		for i := uint(0); i < count; i++ {
			cf = msb(v)
			v = (v << 1) & w.mask
		}
		c.setFlag(arch.FlagOverflow, msb(v) != cf)
		c.setSZP(w, v)
	case 5: // SHR
		c.setFlag(arch.FlagOverflow, msb(v))
		for i := uint(0); i < count; i++ {
			cf = v&1 != 0
			v >>= 1
		}
		c.setSZP(w, v)
	case 7: // SAR
		for i := uint(0); i < count; i++ {
			cf = v&1 != 0
			sign := v & w.sign
			v = v>>1 | sign
		}
		c.setFlag(arch.FlagOverflow, false)
		c.setSZP(w, v)
	}

	c.setFlag(arch.FlagCarry, cf)
	return v
}
