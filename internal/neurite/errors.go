package neurite

import (
	"errors"
	"fmt"
)

// ErrStructural is wrapped by every precondition violation. Callers abort the
// run when errors.Is(err, ErrStructural).
var ErrStructural = errors.New("structural violation")

var (
	// ErrNotTerminal is returned when an operation requires a segment without daughters.
	ErrNotTerminal = fmt.Errorf("%w: segment is not terminal", ErrStructural)

	// ErrBranchOccupied is returned when a side branch is requested on a
	// segment whose right daughter is already set.
	ErrBranchOccupied = fmt.Errorf("%w: right daughter already set", ErrStructural)

	// ErrNoDaughter is returned when a side extension targets a terminal
	// segment; a side branch needs an existing left daughter.
	ErrNoDaughter = fmt.Errorf("%w: side extension requires a left daughter", ErrStructural)

	// ErrNotDaughter is returned when removing or replacing a node that is not a daughter.
	ErrNotDaughter = fmt.Errorf("%w: node is not a daughter", ErrStructural)

	// ErrUnknownNode is returned when a reference does not resolve in storage.
	ErrUnknownNode = fmt.Errorf("%w: unknown node", ErrStructural)

	// ErrWrongTarget is returned when an event is applied to the wrong kind of node.
	ErrWrongTarget = fmt.Errorf("%w: event not applicable to node", ErrStructural)

	// ErrInvalidPortion is returned for split portions outside (0, 1).
	ErrInvalidPortion = fmt.Errorf("%w: distal portion must be in (0, 1)", ErrStructural)

	// ErrInvalidDirection is returned for zero or non-finite growth directions.
	ErrInvalidDirection = fmt.Errorf("%w: invalid growth direction", ErrStructural)
)

// OpError records the operation and node that produced a structural error.
type OpError struct {
	Op  string
	ID  ID
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("neurite: %s on node %d: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(op string, id ID, err error) error {
	return &OpError{Op: op, ID: id, Err: err}
}
