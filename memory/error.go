package memory

import (
	"fmt"

	"github.com/pkg/errors"
)

// Channel identifies the kind of memory access.
type Channel byte

// Known access channels.
const (
	Read Channel = iota
	Write
	Execute
)

func (c Channel) String() string {
	switch c {
	case Read:
		return "read"
	case Write:
		return "write"
	case Execute:
		return "execute"
	}
	return fmt.Sprintf("channel(%d)", byte(c))
}

// Fault is raised when an access violates the access-control table.
type Fault struct {
	Channel Channel
	Address Address
}

func (e *Fault) Error() string {
	return fmt.Sprintf("%s: %s access denied", e.Address, e.Channel)
}

// ErrTooManyRegions is returned by AccessControl.Grant when the region table
// would exceed its capacity.
var ErrTooManyRegions = errors.New("access control region table is full")

// IsFault returns the memory fault wrapped in err, if any.
func IsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
