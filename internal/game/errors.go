package game

import (
	"errors"
	"fmt"
)

// ErrInvalidDirection is returned when a direction cannot be parsed
var ErrInvalidDirection = errors.New("invalid direction")

// InvariantViolation describes a programmer error detected by the engine.
// It is raised with panic and never returned as a runtime condition.
type InvariantViolation struct {
	Op     string
	Detail string
}

// Error implements the error interface
func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("game: invariant violation in %s: %s", v.Op, v.Detail)
}

func violate(op, format string, args ...interface{}) {
	panic(&InvariantViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
