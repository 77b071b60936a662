package cpu

import (
	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/memory"
)

// ops is the opcode dispatch table. It is filled once and never modified.
var ops [256]func(*CPU)

func init() {
	for alu := 0; alu < 8; alu++ {
		for j := 0; j < 6; j++ {
			ops[alu<<3|j] = opALU
		}
	}

	ops[0x06] = opPushSeg
	ops[0x07] = opPopSeg
	ops[0x0e] = opPushSeg
	ops[0x16] = opPushSeg
	ops[0x17] = opPopSeg
	ops[0x1e] = opPushSeg
	ops[0x1f] = opPopSeg

	for r := 0; r < 8; r++ {
		ops[0x40+r] = opIncReg
		ops[0x48+r] = opDecReg
		ops[0x50+r] = opPushReg
		ops[0x58+r] = opPopReg
		ops[0x90+r] = opXchgAX
		ops[0xb0+r] = opMovRegImm8
		ops[0xb8+r] = opMovRegImm16
	}

	ops[0x60] = opPusha
	ops[0x61] = opPopa
	ops[0x68] = opPushImm16
	ops[0x69] = opImul3
	ops[0x6a] = opPushImm8
	ops[0x6b] = opImul3

	for cc := 0; cc < 16; cc++ {
		ops[0x70+cc] = opJcc
	}

	ops[0x80] = opGroup1
	ops[0x81] = opGroup1
	ops[0x82] = opGroup1
	ops[0x83] = opGroup1
	ops[0x84] = opTest
	ops[0x85] = opTest
	ops[0x86] = opXchg
	ops[0x87] = opXchg
	ops[0x88] = opMov
	ops[0x89] = opMov
	ops[0x8a] = opMov
	ops[0x8b] = opMov
	ops[0x8c] = opMovFromSeg
	ops[0x8d] = opLea
	ops[0x8e] = opMovToSeg
	ops[0x8f] = opPopRM

	ops[0x98] = opCbw
	ops[0x99] = opCwd
	ops[0x9a] = opCallFar
	ops[0x9b] = opNrg
	ops[0x9c] = opPushf
	ops[0x9d] = opPopf
	ops[0x9e] = opSahf
	ops[0x9f] = opLahf

	ops[0xa0] = opMovAccMem
	ops[0xa1] = opMovAccMem
	ops[0xa2] = opMovAccMem
	ops[0xa3] = opMovAccMem
	ops[0xa4] = opString
	ops[0xa5] = opString
	ops[0xa6] = opString
	ops[0xa7] = opString
	ops[0xa8] = opTestAcc
	ops[0xa9] = opTestAcc
	for op := 0xaa; op <= 0xaf; op++ {
		ops[op] = opString
	}

	ops[0xc0] = opShift
	ops[0xc1] = opShift
	ops[0xc2] = opRet
	ops[0xc3] = opRet
	ops[0xc4] = opLoadFar
	ops[0xc5] = opLoadFar
	ops[0xc6] = opMovRMImm
	ops[0xc7] = opMovRMImm
	ops[0xc8] = opEnter
	ops[0xc9] = opLeave
	ops[0xca] = opRetf
	ops[0xcb] = opRetf
	ops[0xcc] = opInt3
	ops[0xcd] = opInt
	ops[0xce] = opInto
	ops[0xcf] = opIret

	ops[0xd0] = opShift
	ops[0xd1] = opShift
	ops[0xd2] = opShift
	ops[0xd3] = opShift
	ops[0xd7] = opXlat

	ops[0xe0] = opLoop
	ops[0xe1] = opLoop
	ops[0xe2] = opLoop
	ops[0xe3] = opLoop
	ops[0xe8] = opCallNear
	ops[0xe9] = opJmpNear
	ops[0xea] = opJmpFar
	ops[0xeb] = opJmpShort

	ops[0xf5] = opFlag
	ops[0xf6] = opGroup3
	ops[0xf7] = opGroup3
	for op := 0xf8; op <= 0xfd; op++ {
		ops[op] = opFlag
	}
	ops[0xfe] = opGroup4
	ops[0xff] = opGroup5

	// Every valid opcode must have a handler, and only those.
	for i := range ops {
		valid := arch.Lookup(byte(i)).Class == arch.Valid
		if valid == (ops[i] == nil) {
			panic("cpu: opcode table out of sync at " + arch.Describe(byte(i), 0))
		}
	}
}

// opALU handles the eight ALU operations in their six encodings:
// Eb,Gb  Ev,Gv  Gb,Eb  Gv,Ev  AL,Ib  AX,Iv.
func opALU(c *CPU) {
	op := c.instr.Opcode
	alu := int(op >> 3)
	w := widthOf(op)

	switch op & 7 {
	case 0, 1:
		m := c.decodeModRM()
		if r, ok := c.alu(alu, w, m.rmValue(w), m.regValue(w)); ok {
			m.setRM(w, r)
		}
	case 2, 3:
		m := c.decodeModRM()
		if r, ok := c.alu(alu, w, m.regValue(w), m.rmValue(w)); ok {
			m.setRegValue(w, r)
		}
	case 4, 5:
		imm := c.nextImm(w)
		if r, ok := c.alu(alu, w, c.reg(w, arch.AX), imm); ok {
			c.setReg(w, arch.AX, r)
		}
	}
}

// segOf returns the segment register pushed or popped by 06/07/0e/16/17/1e/1f.
func segOf(op byte) int {
	return int(op>>3) & 3
}

func opPushSeg(c *CPU) {
	c.push(c.Seg(segOf(c.instr.Opcode)))
}

func opPopSeg(c *CPU) {
	c.SetSeg(segOf(c.instr.Opcode), c.pop())
}

func opIncReg(c *CPU) {
	r := int(c.instr.Opcode & 7)
	c.SetReg16(r, uint16(c.inc(wordWidth, uint32(c.Reg16(r)), 1)))
}

func opDecReg(c *CPU) {
	r := int(c.instr.Opcode & 7)
	c.SetReg16(r, uint16(c.inc(wordWidth, uint32(c.Reg16(r)), -1)))
}

func opPushReg(c *CPU) {
	c.push(c.Reg16(int(c.instr.Opcode & 7)))
}

func opPopReg(c *CPU) {
	v := c.pop()
	c.SetReg16(int(c.instr.Opcode&7), v)
}

// opXchgAX handles 90-97. 90 is XCHG AX,AX, i.e. NOP.
func opXchgAX(c *CPU) {
	r := int(c.instr.Opcode & 7)
	ax := c.AX()
	c.SetAX(c.Reg16(r))
	c.SetReg16(r, ax)
}

func opMovRegImm8(c *CPU) {
	c.SetReg8(int(c.instr.Opcode&7), c.next8())
}

func opMovRegImm16(c *CPU) {
	c.SetReg16(int(c.instr.Opcode&7), c.next16())
}

func opPusha(c *CPU) {
	sp := c.SP()
	c.push(c.AX())
	c.push(c.CX())
	c.push(c.DX())
	c.push(c.BX())
	c.push(sp)
	c.push(c.BP())
	c.push(c.SI())
	c.push(c.DI())
}

func opPopa(c *CPU) {
	c.SetDI(c.pop())
	c.SetSI(c.pop())
	c.SetBP(c.pop())
	c.pop()
	c.SetBX(c.pop())
	c.SetDX(c.pop())
	c.SetCX(c.pop())
	c.SetAX(c.pop())
}

func opPushImm16(c *CPU) {
	c.push(c.next16())
}

func opPushImm8(c *CPU) {
	c.push(signExtend(c.next8()))
}

// opImul3 handles IMUL Gv,Ev,Iv (69) and IMUL Gv,Ev,Ib (6b).
func opImul3(c *CPU) {
	m := c.decodeModRM()
	a := int32(int16(m.rm16()))

	var b int32
	if c.instr.Opcode == 0x6b {
		b = int32(int8(c.next8()))
	} else {
		b = int32(int16(c.next16()))
	}

	r := a * b
	m.setRegValue(wordWidth, uint32(uint16(r)))

	overflow := r != int32(int16(r))
	c.setFlag(arch.FlagCarry, overflow)
	c.setFlag(arch.FlagOverflow, overflow)
}

func opJcc(c *CPU) {
	rel := signExtend(c.next8())
	if c.condition(c.instr.Opcode & 0xf) {
		c.jump(rel)
	}
}

// opGroup1 handles 80-83: ALU op selected by RRR on r/m and an immediate.
func opGroup1(c *CPU) {
	op := c.instr.Opcode
	w := widthOf(op)
	m := c.decodeModRM()

	var imm uint32
	switch op {
	case 0x81:
		imm = uint32(c.next16())
	case 0x83:
		imm = uint32(signExtend(c.next8()))
	default:
		imm = uint32(c.next8())
	}

	if r, ok := c.alu(m.reg, w, m.rmValue(w), imm); ok {
		m.setRM(w, r)
	}
}

func opTest(c *CPU) {
	w := widthOf(c.instr.Opcode)
	m := c.decodeModRM()
	c.logic(w, m.rmValue(w)&m.regValue(w))
}

func opTestAcc(c *CPU) {
	w := widthOf(c.instr.Opcode)
	imm := c.nextImm(w)
	c.logic(w, c.reg(w, arch.AX)&imm)
}

func opXchg(c *CPU) {
	w := widthOf(c.instr.Opcode)
	m := c.decodeModRM()
	a := m.rmValue(w)
	b := m.regValue(w)
	m.setRM(w, b)
	m.setRegValue(w, a)
}

// opMov handles 88-8b.
func opMov(c *CPU) {
	op := c.instr.Opcode
	w := widthOf(op)
	m := c.decodeModRM()

	if op&2 == 0 {
		m.setRM(w, m.regValue(w))
	} else {
		m.setRegValue(w, m.rmValue(w))
	}
}

func opMovFromSeg(c *CPU) {
	m := c.decodeModRM()
	m.setRM16(m.seg())
}

func opMovToSeg(c *CPU) {
	m := c.decodeModRM()
	m.setSeg(m.rm16())
}

func opLea(c *CPU) {
	m := c.decodeModRM()
	a := m.address()
	m.setRegValue(wordWidth, uint32(a.Offset))
}

func opPopRM(c *CPU) {
	m := c.decodeModRM()
	if m.reg != 0 {
		c.fail(InvalidOpcode)
		return
	}
	m.setRM16(c.pop())
}

func opCbw(c *CPU) {
	c.SetAX(signExtend(c.AL()))
}

func opCwd(c *CPU) {
	if c.AX()&0x8000 != 0 {
		c.SetDX(0xffff)
	} else {
		c.SetDX(0)
	}
}

func opCallFar(c *CPU) {
	off := c.next16()
	seg := c.next16()
	c.push(c.CS())
	c.push(c.IP)
	c.SetCS(seg)
	c.IP = off
}

// opNrg decodes the virtual NRG instruction: four WAIT bytes in a row.
// It has no further effect; Energy only decays.
func opNrg(c *CPU) {
	for i := 1; i < arch.NRGLength; i++ {
		if c.next8() != arch.WAIT {
			c.fail(InvalidOpcode)
			return
		}
	}
}

func opPushf(c *CPU) {
	c.push(c.Flags)
}

func opPopf(c *CPU) {
	c.Flags = c.pop() & flagMask
}

const sahfMask = arch.FlagSign | arch.FlagZero | arch.FlagAux | arch.FlagParity | arch.FlagCarry

func opSahf(c *CPU) {
	c.Flags = c.Flags&^sahfMask | uint16(c.AH())&sahfMask
}

func opLahf(c *CPU) {
	c.SetAH(byte(c.Flags))
}

// opMovAccMem handles MOV between AL/AX and [DS:imm16] (a0-a3).
func opMovAccMem(c *CPU) {
	op := c.instr.Opcode
	w := widthOf(op)
	addr := memory.NewAddress(c.DS(), c.next16())

	if op&2 == 0 {
		c.setReg(w, arch.AX, c.read(w, addr))
	} else {
		c.write(w, addr, c.reg(w, arch.AX))
	}
}

func opRet(c *CPU) {
	var n uint16
	if c.instr.Opcode == 0xc2 {
		n = c.next16()
	}
	c.IP = c.pop()
	c.SetSP(c.SP() + n)
}

func opRetf(c *CPU) {
	var n uint16
	if c.instr.Opcode == 0xca {
		n = c.next16()
	}
	c.IP = c.pop()
	c.SetCS(c.pop())
	c.SetSP(c.SP() + n)
}

// opLoadFar handles LES (c4) and LDS (c5).
func opLoadFar(c *CPU) {
	m := c.decodeModRM()
	a := m.address()
	off := c.read16(a)
	seg := c.read16(a.AddOffset(2))
	if c.failed() {
		return
	}

	m.setRegValue(wordWidth, uint32(off))
	if c.instr.Opcode == 0xc4 {
		c.SetES(seg)
	} else {
		c.SetDS(seg)
	}
}

func opMovRMImm(c *CPU) {
	w := widthOf(c.instr.Opcode)
	m := c.decodeModRM()
	if m.reg != 0 {
		c.fail(InvalidOpcode)
		return
	}
	m.setRM(w, c.nextImm(w))
}

func opEnter(c *CPU) {
	size := c.next16()
	level := int(c.next8() & 0x1f)

	c.push(c.BP())
	frame := c.SP()

	if level > 0 {
		bp := c.BP()
		for i := 1; i < level; i++ {
			bp -= 2
			c.push(c.read16(memory.NewAddress(c.SS(), bp)))
		}
		c.push(frame)
	}

	c.SetBP(frame)
	c.SetSP(c.SP() - size)
}

func opLeave(c *CPU) {
	c.SetSP(c.BP())
	c.SetBP(c.pop())
}

func opInt3(c *CPU) {
	c.interrupt(3)
}

func opInt(c *CPU) {
	c.interrupt(c.next8())
}

func opInto(c *CPU) {
	if c.OF() {
		c.interrupt(4)
	}
}

func opIret(c *CPU) {
	c.IP = c.pop()
	c.SetCS(c.pop())
	c.Flags = c.pop() & flagMask
}

func opXlat(c *CPU) {
	addr := memory.NewAddress(c.DS(), c.BX()+uint16(c.AL()))
	c.SetAL(c.read8(addr))
}

// opLoop handles LOOPNZ, LOOPZ, LOOP and JCXZ (e0-e3).
func opLoop(c *CPU) {
	op := c.instr.Opcode
	rel := signExtend(c.next8())

	if op == 0xe3 {
		if c.CX() == 0 {
			c.jump(rel)
		}
		return
	}

	cx := c.CX() - 1
	c.SetCX(cx)

	take := cx != 0
	switch op {
	case 0xe0:
		take = take && !c.ZF()
	case 0xe1:
		take = take && c.ZF()
	}

	if take {
		c.jump(rel)
	}
}

func opCallNear(c *CPU) {
	rel := c.next16()
	c.push(c.IP)
	c.jump(rel)
}

func opJmpNear(c *CPU) {
	rel := c.next16()
	c.jump(rel)
}

func opJmpFar(c *CPU) {
	off := c.next16()
	seg := c.next16()
	c.SetCS(seg)
	c.IP = off
}

func opJmpShort(c *CPU) {
	rel := signExtend(c.next8())
	c.jump(rel)
}

// opFlag handles CMC (f5) and CLC, STC, CLI, STI, CLD, STD (f8-fd).
func opFlag(c *CPU) {
	switch c.instr.Opcode {
	case 0xf5:
		c.setFlag(arch.FlagCarry, !c.CF())
	case 0xf8:
		c.setFlag(arch.FlagCarry, false)
	case 0xf9:
		c.setFlag(arch.FlagCarry, true)
	case 0xfa:
		c.setFlag(arch.FlagInterrupt, false)
	case 0xfb:
		c.setFlag(arch.FlagInterrupt, true)
	case 0xfc:
		c.setFlag(arch.FlagDirection, false)
	case 0xfd:
		c.setFlag(arch.FlagDirection, true)
	}
}
