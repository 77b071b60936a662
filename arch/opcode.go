// Package arch defines the 8086 instruction set subset understood by
// the arena CPU, along with register and addressing tables.
package arch

import "fmt"

// Class tells how the CPU treats an opcode byte.
type Class byte

// Known opcode classes.
const (
	Invalid       Class = iota // Not part of the instruction set.
	Valid                      // Implemented.
	Unimplemented              // Recognized, deliberately unsupported.
	Prefix                     // REP/REPZ/REPNZ.
)

func (c Class) String() string {
	switch c {
	case Valid:
		return "valid"
	case Unimplemented:
		return "unimplemented"
	case Prefix:
		return "prefix"
	}
	return "invalid"
}

// Info describes one opcode byte.
type Info struct {
	Name  string
	Class Class
	ModRM bool // Followed by an indirect-addressing byte?
}

// Opcodes with dedicated meaning in the arena.
const (
	WAIT  = 0x9b // Four in a row form the NRG instruction.
	INT   = 0xcd
	REPNZ = 0xf2
	REPZ  = 0xf3
)

// Virtual interrupt vectors.
const (
	IntHeavyBomb   = 0x86
	IntSmartBomb   = 0x87
	IntEnergyDrain = 0x88
)

// NRGLength is the number of WAIT bytes forming one NRG instruction.
const NRGLength = 4

var table [256]Info

// Group sub-operation names, selected by the RRR field.
var (
	ALUNames    = [8]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}
	ShiftNames  = [8]string{"ROL", "ROR", "RCL", "RCR", "SHL", "SHR", "", "SAR"}
	UnaryNames  = [8]string{"TEST", "", "NOT", "NEG", "MUL", "IMUL", "DIV", "IDIV"}
	IncDecNames = [8]string{"INC", "DEC"}
	Group5Names = [8]string{"INC", "DEC", "CALL", "CALL FAR", "JMP", "JMP FAR", "PUSH", ""}
	JccNames    = [16]string{
		"JO", "JNO", "JB", "JNB", "JZ", "JNZ", "JBE", "JA",
		"JS", "JNS", "JP", "JNP", "JL", "JGE", "JLE", "JG",
	}
)

func set(op int, name string, class Class, modrm bool) {
	table[op] = Info{Name: name, Class: class, ModRM: modrm}
}

func init() {
	// ALU blocks: 00-05, 08-0d, ... 38-3d.
	for i, name := range ALUNames {
		base := i << 3
		set(base+0, name, Valid, true)
		set(base+1, name, Valid, true)
		set(base+2, name, Valid, true)
		set(base+3, name, Valid, true)
		set(base+4, name, Valid, false)
		set(base+5, name, Valid, false)
	}

	set(0x06, "PUSH ES", Valid, false)
	set(0x07, "POP ES", Valid, false)
	set(0x0e, "PUSH CS", Valid, false)
	set(0x16, "PUSH SS", Valid, false)
	set(0x17, "POP SS", Valid, false)
	set(0x1e, "PUSH DS", Valid, false)
	set(0x1f, "POP DS", Valid, false)

	set(0x26, "ES:", Unimplemented, false)
	set(0x2e, "CS:", Unimplemented, false)
	set(0x36, "SS:", Unimplemented, false)
	set(0x3e, "DS:", Unimplemented, false)
	set(0x27, "DAA", Unimplemented, false)
	set(0x2f, "DAS", Unimplemented, false)
	set(0x37, "AAA", Unimplemented, false)
	set(0x3f, "AAS", Unimplemented, false)

	for r := 0; r < 8; r++ {
		set(0x40+r, "INC "+Reg16Name(r), Valid, false)
		set(0x48+r, "DEC "+Reg16Name(r), Valid, false)
		set(0x50+r, "PUSH "+Reg16Name(r), Valid, false)
		set(0x58+r, "POP "+Reg16Name(r), Valid, false)
		set(0xb0+r, "MOV "+Reg8Name(r), Valid, false)
		set(0xb8+r, "MOV "+Reg16Name(r), Valid, false)
		if r > 0 {
			set(0x90+r, "XCHG "+Reg16Name(r), Valid, false)
		}
	}

	set(0x60, "PUSHA", Valid, false)
	set(0x61, "POPA", Valid, false)
	set(0x68, "PUSH", Valid, false)
	set(0x69, "IMUL", Valid, true)
	set(0x6a, "PUSH", Valid, false)
	set(0x6b, "IMUL", Valid, true)
	set(0x6c, "INSB", Unimplemented, false)
	set(0x6d, "INSW", Unimplemented, false)
	set(0x6e, "OUTSB", Unimplemented, false)
	set(0x6f, "OUTSW", Unimplemented, false)

	for i, name := range JccNames {
		set(0x70+i, name, Valid, false)
	}

	set(0x80, "GRP1", Valid, true)
	set(0x81, "GRP1", Valid, true)
	set(0x82, "GRP1", Valid, true)
	set(0x83, "GRP1", Valid, true)
	set(0x84, "TEST", Valid, true)
	set(0x85, "TEST", Valid, true)
	set(0x86, "XCHG", Valid, true)
	set(0x87, "XCHG", Valid, true)
	set(0x88, "MOV", Valid, true)
	set(0x89, "MOV", Valid, true)
	set(0x8a, "MOV", Valid, true)
	set(0x8b, "MOV", Valid, true)
	set(0x8c, "MOV", Valid, true)
	set(0x8d, "LEA", Valid, true)
	set(0x8e, "MOV", Valid, true)
	set(0x8f, "POP", Valid, true)

	set(0x90, "NOP", Valid, false)
	set(0x98, "CBW", Valid, false)
	set(0x99, "CWD", Valid, false)
	set(0x9a, "CALL FAR", Valid, false)
	set(0x9b, "NRG", Valid, false)
	set(0x9c, "PUSHF", Valid, false)
	set(0x9d, "POPF", Valid, false)
	set(0x9e, "SAHF", Valid, false)
	set(0x9f, "LAHF", Valid, false)

	set(0xa0, "MOV", Valid, false)
	set(0xa1, "MOV", Valid, false)
	set(0xa2, "MOV", Valid, false)
	set(0xa3, "MOV", Valid, false)
	set(0xa4, "MOVSB", Valid, false)
	set(0xa5, "MOVSW", Valid, false)
	set(0xa6, "CMPSB", Valid, false)
	set(0xa7, "CMPSW", Valid, false)
	set(0xa8, "TEST", Valid, false)
	set(0xa9, "TEST", Valid, false)
	set(0xaa, "STOSB", Valid, false)
	set(0xab, "STOSW", Valid, false)
	set(0xac, "LODSB", Valid, false)
	set(0xad, "LODSW", Valid, false)
	set(0xae, "SCASB", Valid, false)
	set(0xaf, "SCASW", Valid, false)

	set(0xc0, "SHIFT", Valid, true)
	set(0xc1, "SHIFT", Valid, true)
	set(0xc2, "RET", Valid, false)
	set(0xc3, "RET", Valid, false)
	set(0xc4, "LES", Valid, true)
	set(0xc5, "LDS", Valid, true)
	set(0xc6, "MOV", Valid, true)
	set(0xc7, "MOV", Valid, true)
	set(0xc8, "ENTER", Valid, false)
	set(0xc9, "LEAVE", Valid, false)
	set(0xca, "RETF", Valid, false)
	set(0xcb, "RETF", Valid, false)
	set(0xcc, "INT3", Valid, false)
	set(0xcd, "INT", Valid, false)
	set(0xce, "INTO", Valid, false)
	set(0xcf, "IRET", Valid, false)

	set(0xd0, "SHIFT", Valid, true)
	set(0xd1, "SHIFT", Valid, true)
	set(0xd2, "SHIFT", Valid, true)
	set(0xd3, "SHIFT", Valid, true)
	set(0xd4, "AAM", Unimplemented, false)
	set(0xd5, "AAD", Unimplemented, false)
	set(0xd7, "XLAT", Valid, false)
	for op := 0xd8; op <= 0xdf; op++ {
		set(op, "ESC", Unimplemented, false)
	}

	set(0xe0, "LOOPNZ", Valid, false)
	set(0xe1, "LOOPZ", Valid, false)
	set(0xe2, "LOOP", Valid, false)
	set(0xe3, "JCXZ", Valid, false)
	set(0xe4, "IN", Unimplemented, false)
	set(0xe5, "IN", Unimplemented, false)
	set(0xe6, "OUT", Unimplemented, false)
	set(0xe7, "OUT", Unimplemented, false)
	set(0xe8, "CALL", Valid, false)
	set(0xe9, "JMP", Valid, false)
	set(0xea, "JMP FAR", Valid, false)
	set(0xeb, "JMP", Valid, false)
	set(0xec, "IN", Unimplemented, false)
	set(0xed, "IN", Unimplemented, false)
	set(0xee, "OUT", Unimplemented, false)
	set(0xef, "OUT", Unimplemented, false)

	set(0xf0, "LOCK", Unimplemented, false)
	set(0xf2, "REPNZ", Prefix, false)
	set(0xf3, "REPZ", Prefix, false)
	set(0xf4, "HLT", Unimplemented, false)
	set(0xf5, "CMC", Valid, false)
	set(0xf6, "GRP3", Valid, true)
	set(0xf7, "GRP3", Valid, true)
	set(0xf8, "CLC", Valid, false)
	set(0xf9, "STC", Valid, false)
	set(0xfa, "CLI", Valid, false)
	set(0xfb, "STI", Valid, false)
	set(0xfc, "CLD", Valid, false)
	set(0xfd, "STD", Valid, false)
	set(0xfe, "GRP4", Valid, true)
	set(0xff, "GRP5", Valid, true)
}

// Lookup returns the table entry for the given opcode byte.
func Lookup(opcode byte) Info {
	return table[opcode]
}

// Name returns the mnemonic for the given opcode.
// Returns false if the opcode is not recognized.
func Name(opcode byte) (string, bool) {
	info := table[opcode]
	if info.Class == Invalid {
		return "", false
	}
	return info.Name, true
}

// Describe returns a mnemonic for opcode, refined by the RRR field
// of the addressing byte for group opcodes and segment moves.
func Describe(opcode, modrm byte) string {
	rrr := (modrm >> 3) & 7
	var name string

	switch opcode {
	case 0x80, 0x81, 0x82, 0x83:
		name = ALUNames[rrr]
	case 0xc0, 0xc1, 0xd0, 0xd1, 0xd2, 0xd3:
		name = ShiftNames[rrr]
	case 0xf6, 0xf7:
		name = UnaryNames[rrr]
	case 0xfe:
		name = IncDecNames[rrr]
	case 0xff:
		name = Group5Names[rrr]
	case 0x8c:
		name = "MOV r/m16, " + SegName(int(rrr))
	case 0x8e:
		name = "MOV " + SegName(int(rrr)) + ", r/m16"
	default:
		name, _ = Name(opcode)
	}

	if name == "" {
		return fmt.Sprintf("DB %02Xh", opcode)
	}
	return name
}
