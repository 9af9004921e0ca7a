package constraintprop

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the pipeline. Callers match them with
// errors.Is. Errors raised by this package wrap exactly one of these; an
// error from a caller-supplied HierarchicalClusterer or NeighborFinder is
// wrapped as it was returned.
var (
	// ErrInvalidConstraint reports a malformed constraint row: a kind outside
	// {0, 1}, an index out of range, a cannot-link self pair, or a pair marked
	// as both must-link and cannot-link.
	ErrInvalidConstraint = errors.New("constraintprop: invalid constraint")

	// ErrEmptyConstraintSet reports that no constraints were supplied.
	ErrEmptyConstraintSet = errors.New("constraintprop: empty constraint set")

	// ErrDendrogramMismatch reports a dendrogram that does not describe the
	// data matrix: wrong sample count, wrong merge count, or a merge that
	// references a virtual node that does not exist yet or was already used.
	ErrDendrogramMismatch = errors.New("constraintprop: dendrogram does not match data")

	// ErrDegenerateGraph reports that fewer than two nodes survived
	// agglomeration, so there is nothing to cut.
	ErrDegenerateGraph = errors.New("constraintprop: fewer than 2 nodes after agglomeration")

	// ErrInvalidData reports input without the shape a stage needs: an empty
	// or ragged data matrix, a flat slice of the wrong length, or labels and
	// neighbour lists that point past the nodes they index.
	ErrInvalidData = errors.New("constraintprop: invalid data")

	// ErrInvalidConfig reports a Config field outside its allowed range.
	ErrInvalidConfig = errors.New("constraintprop: invalid config")
)

// ConstraintError describes the constraint row that failed validation.
// It unwraps to ErrInvalidConstraint.
type ConstraintError struct {
	Row    int
	A, B   int
	Kind   int
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraintprop: invalid constraint at row %d (%d, %d, kind=%d): %s",
		e.Row, e.A, e.B, e.Kind, e.Reason)
}

func (e *ConstraintError) Unwrap() error { return ErrInvalidConstraint }
