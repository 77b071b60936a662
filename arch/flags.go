package arch

import "strings"

// Flag bits of the 16-bit flags word.
const (
	FlagCarry     = 1 << 0
	FlagParity    = 1 << 2
	FlagAux       = 1 << 4
	FlagZero      = 1 << 6
	FlagSign      = 1 << 7
	FlagTrap      = 1 << 8
	FlagInterrupt = 1 << 9
	FlagDirection = 1 << 10
	FlagOverflow  = 1 << 11
)

var flagNames = []struct {
	bit  uint16
	name string
}{
	{FlagOverflow, "O"},
	{FlagDirection, "D"},
	{FlagInterrupt, "I"},
	{FlagTrap, "T"},
	{FlagSign, "S"},
	{FlagZero, "Z"},
	{FlagAux, "A"},
	{FlagParity, "P"},
	{FlagCarry, "C"},
}

// FlagString returns a compact representation of the given flags word,
// with set flags in upper case and clear flags as '-'.
func FlagString(flags uint16) string {
	var sb strings.Builder
	for _, f := range flagNames {
		if flags&f.bit != 0 {
			sb.WriteString(f.name)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
