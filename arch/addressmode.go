package arch

// Submode defines the MM field of an indirect-addressing byte.
type Submode byte

// Known submodes.
const (
	Indirect       Submode = 0 // x = [base+index]
	IndirectDisp8  Submode = 1 // x = [base+index+imm8]
	IndirectDisp16 Submode = 2 // x = [base+index+imm16]
	Direct         Submode = 3 // x = register
)

// Displacement returns the number of displacement bytes that follow the
// addressing byte for the given submode and base/index selector.
func (s Submode) Displacement(index int) int {
	switch s {
	case Indirect:
		if index == AbsoluteIndex {
			return 2
		}
		return 0
	case IndirectDisp8:
		return 1
	case IndirectDisp16:
		return 2
	}
	return 0
}

// AbsoluteIndex is the base/index selector which, in submode Indirect,
// denotes a bare 16-bit displacement.
const AbsoluteIndex = 6

// NoRegister marks an unused base or index slot in BaseIndex.
const NoRegister = -1

// BaseIndex describes the effective address components selected by
// the III field of an indirect-addressing byte.
type BaseIndex struct {
	Base    int // 16-bit register index of the base, or NoRegister.
	Index   int // 16-bit register index of the index, or NoRegister.
	Segment int // Default segment register index.
	Name    string
}

// BaseIndexTable lists the operand forms for III = 0..7.
//
// Entry 6 describes [BP]; in submode Indirect it is replaced by an
// absolute displacement relative to DS.
var BaseIndexTable = [8]BaseIndex{
	{BX, SI, DS, "BX+SI"},
	{BX, DI, DS, "BX+DI"},
	{BP, SI, SS, "BP+SI"},
	{BP, DI, SS, "BP+DI"},
	{SI, NoRegister, DS, "SI"},
	{DI, NoRegister, DS, "DI"},
	{BP, NoRegister, SS, "BP"},
	{BX, NoRegister, DS, "BX"},
}

// Absolute is the operand form used by submode Indirect, index 6.
var Absolute = BaseIndex{NoRegister, NoRegister, DS, "imm16"}

// Resolve returns the base/index form for the given submode and III field.
func Resolve(s Submode, index int) BaseIndex {
	if s == Indirect && index == AbsoluteIndex {
		return Absolute
	}
	return BaseIndexTable[index&7]
}
