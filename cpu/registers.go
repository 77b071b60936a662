package cpu

import (
	"fmt"

	"github.com/hexaflex/arena/arch"
	"github.com/hexaflex/arena/devices"
)

// flagMask holds the flag bits POPF and IRET may change.
const flagMask = arch.FlagCarry | arch.FlagParity | arch.FlagAux | arch.FlagZero |
	arch.FlagSign | arch.FlagTrap | arch.FlagInterrupt | arch.FlagDirection | arch.FlagOverflow

// Registers holds the architectural state of one CPU, plus the arena's
// virtual Energy and bomb counters.
type Registers struct {
	gp     [8]uint16 // AX, CX, DX, BX, SP, BP, SI, DI
	seg    [4]uint16 // ES, CS, SS, DS
	IP     uint16
	Flags  uint16
	energy uint16
	bombs  [devices.BombCounters]uint8
}

// Reg16 returns the 16-bit register with the given index.
func (r *Registers) Reg16(i int) uint16 {
	return r.gp[i&7]
}

// SetReg16 sets the 16-bit register with the given index.
func (r *Registers) SetReg16(i int, v uint16) {
	r.gp[i&7] = v
}

// Reg8 returns the 8-bit register with the given index:
// AL, CL, DL, BL, AH, CH, DH, BH.
func (r *Registers) Reg8(i int) byte {
	i &= 7
	if i < 4 {
		return byte(r.gp[i])
	}
	return byte(r.gp[i-4] >> 8)
}

// SetReg8 sets the 8-bit register with the given index.
func (r *Registers) SetReg8(i int, v byte) {
	i &= 7
	if i < 4 {
		r.gp[i] = r.gp[i]&0xff00 | uint16(v)
	} else {
		r.gp[i-4] = r.gp[i-4]&0x00ff | uint16(v)<<8
	}
}

// Seg returns the segment register selected by the given 3-bit field.
func (r *Registers) Seg(i int) uint16 {
	return r.seg[arch.SegmentIndex(i)]
}

// SetSeg sets the segment register selected by the given 3-bit field.
func (r *Registers) SetSeg(i int, v uint16) {
	r.seg[arch.SegmentIndex(i)] = v
}

func (r *Registers) AX() uint16 { return r.gp[arch.AX] }
func (r *Registers) CX() uint16 { return r.gp[arch.CX] }
func (r *Registers) DX() uint16 { return r.gp[arch.DX] }
func (r *Registers) BX() uint16 { return r.gp[arch.BX] }
func (r *Registers) SP() uint16 { return r.gp[arch.SP] }
func (r *Registers) BP() uint16 { return r.gp[arch.BP] }
func (r *Registers) SI() uint16 { return r.gp[arch.SI] }
func (r *Registers) DI() uint16 { return r.gp[arch.DI] }

func (r *Registers) SetAX(v uint16) { r.gp[arch.AX] = v }
func (r *Registers) SetCX(v uint16) { r.gp[arch.CX] = v }
func (r *Registers) SetDX(v uint16) { r.gp[arch.DX] = v }
func (r *Registers) SetBX(v uint16) { r.gp[arch.BX] = v }
func (r *Registers) SetSP(v uint16) { r.gp[arch.SP] = v }
func (r *Registers) SetBP(v uint16) { r.gp[arch.BP] = v }
func (r *Registers) SetSI(v uint16) { r.gp[arch.SI] = v }
func (r *Registers) SetDI(v uint16) { r.gp[arch.DI] = v }

func (r *Registers) AL() byte { return r.Reg8(arch.AL) }
func (r *Registers) AH() byte { return r.Reg8(arch.AH) }

func (r *Registers) SetAL(v byte) { r.SetReg8(arch.AL, v) }
func (r *Registers) SetAH(v byte) { r.SetReg8(arch.AH, v) }

func (r *Registers) ES() uint16 { return r.seg[arch.ES] }
func (r *Registers) CS() uint16 { return r.seg[arch.CS] }
func (r *Registers) SS() uint16 { return r.seg[arch.SS] }
func (r *Registers) DS() uint16 { return r.seg[arch.DS] }

func (r *Registers) SetES(v uint16) { r.seg[arch.ES] = v }
func (r *Registers) SetCS(v uint16) { r.seg[arch.CS] = v }
func (r *Registers) SetSS(v uint16) { r.seg[arch.SS] = v }
func (r *Registers) SetDS(v uint16) { r.seg[arch.DS] = v }

// Energy returns the virtual Energy register.
func (r *Registers) Energy() uint16 { return r.energy }

// SetEnergy sets the virtual Energy register.
func (r *Registers) SetEnergy(v uint16) { r.energy = v }

// Bomb returns virtual bomb counter n.
func (r *Registers) Bomb(n int) uint8 { return r.bombs[n] }

// SetBomb sets virtual bomb counter n.
func (r *Registers) SetBomb(n int, v uint8) { r.bombs[n] = v }

func (r *Registers) flag(bit uint16) bool {
	return r.Flags&bit != 0
}

func (r *Registers) setFlag(bit uint16, v bool) {
	if v {
		r.Flags |= bit
	} else {
		r.Flags &^= bit
	}
}

func (r *Registers) CF() bool { return r.flag(arch.FlagCarry) }
func (r *Registers) PF() bool { return r.flag(arch.FlagParity) }
func (r *Registers) AF() bool { return r.flag(arch.FlagAux) }
func (r *Registers) ZF() bool { return r.flag(arch.FlagZero) }
func (r *Registers) SF() bool { return r.flag(arch.FlagSign) }
func (r *Registers) IF() bool { return r.flag(arch.FlagInterrupt) }
func (r *Registers) DF() bool { return r.flag(arch.FlagDirection) }
func (r *Registers) OF() bool { return r.flag(arch.FlagOverflow) }

func (r *Registers) String() string {
	return fmt.Sprintf("AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X BP=%04X SI=%04X DI=%04X "+
		"ES=%04X CS=%04X SS=%04X DS=%04X IP=%04X F=%s NRG=%04X",
		r.AX(), r.BX(), r.CX(), r.DX(), r.SP(), r.BP(), r.SI(), r.DI(),
		r.ES(), r.CS(), r.SS(), r.DS(), r.IP, arch.FlagString(r.Flags), r.energy)
}
