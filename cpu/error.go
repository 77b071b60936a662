package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// FaultKind classifies a CPU fault.
type FaultKind byte

// Known fault kinds.
const (
	InvalidOpcode FaultKind = iota + 1 // Byte not in the instruction table.
	Unimplemented                      // Recognized but deliberately unsupported.
	Division                           // DIV/IDIV by zero or quotient overflow.
)

func (k FaultKind) String() string {
	switch k {
	case InvalidOpcode:
		return "invalid opcode"
	case Unimplemented:
		return "unimplemented opcode"
	case Division:
		return "division fault"
	}
	return fmt.Sprintf("fault(%d)", byte(k))
}

// Fault is returned by Step when the current instruction cannot execute.
type Fault struct {
	Instruction
	Kind FaultKind
}

func (e *Fault) Error() string {
	return fmt.Sprintf("%s: %s (%02x)", e.IP, e.Kind, e.Opcode)
}

// IsFault returns the CPU fault wrapped in err, if any.
func IsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
