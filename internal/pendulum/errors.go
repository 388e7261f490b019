package pendulum

import (
	"errors"
	"fmt"
)

// Domain errors for pendulum construction.
var (
	// ErrInvalidParameter indicates a non-positive mass, length or time step,
	// or a non-finite value supplied at construction.
	ErrInvalidParameter = errors.New("pendulum: invalid parameter")

	// ErrSingular indicates the state left the finite domain after a step.
	ErrSingular = errors.New("pendulum: numerical singularity (NaN or Inf in state)")
)

// ParameterError names the field that failed validation.
type ParameterError struct {
	Field string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g", ErrInvalidParameter, e.Field, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
