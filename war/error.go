package war

import (
	"strings"

	"github.com/pkg/errors"
)

// Loader errors. These abort the war before the first round.
var (
	ErrPlacement = errors.New("no valid placement found")
	ErrTooLarge  = errors.New("program exceeds maximum size")
	ErrEmpty     = errors.New("empty program")
	ErrNoTeams   = errors.New("no teams")
)

// ErrorSet defines a list of one or more errors and is itself an error.
type ErrorSet []error

func (e ErrorSet) Len() int {
	return len(e)
}

func (e *ErrorSet) Append(args ...error) {
	*e = append(*e, args...)
}

// Err returns nil if the set is empty, or the set itself.
func (e ErrorSet) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e ErrorSet) Error() string {
	var sb strings.Builder
	for _, err := range e {
		sb.WriteString(err.Error() + "\n")
	}
	return sb.String()
}
