package arch

// 16-bit register indices, in encoding order.
const (
	AX = iota
	CX
	DX
	BX
	SP
	BP
	SI
	DI
)

// 8-bit register indices, in encoding order.
const (
	AL = iota
	CL
	DL
	BL
	AH
	CH
	DH
	BH
)

// Segment register indices, in encoding order.
const (
	ES = iota
	CS
	SS
	DS
)

var (
	reg8Names  = [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}
	reg16Names = [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
	segNames   = [4]string{"ES", "CS", "SS", "DS"}
)

// SegmentIndex maps a 3-bit register field onto a segment register.
// The table repeats after four entries, as the 8086 encoding does.
func SegmentIndex(n int) int {
	return n & 3
}

// Reg8Name returns the name of the 8-bit register with the given index.
func Reg8Name(n int) string {
	return reg8Names[n&7]
}

// Reg16Name returns the name of the 16-bit register with the given index.
func Reg16Name(n int) string {
	return reg16Names[n&7]
}

// SegName returns the name of the segment register selected by the
// given 3-bit field: ES, CS, SS, DS, ES, CS, SS, DS.
func SegName(n int) string {
	return segNames[SegmentIndex(n)]
}
