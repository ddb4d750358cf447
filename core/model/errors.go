package model

import (
	"errors"
	"fmt"
)

// Sentinel errors. ErrWrongType and ErrExpectsParameter wrap
// ErrInvalidArgument.
var (
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrWrongType        = fmt.Errorf("%w: wrong type", ErrInvalidArgument)
	ErrExpectsParameter = fmt.Errorf("%w: expects parameter", ErrInvalidArgument)
	ErrOutOfRange       = errors.New("offset out of range")
	ErrUnresolved       = errors.New("schema not resolved")
)

// FieldError reports a failed field access.
type FieldError struct {
	Entity string
	Field  string
	Type   string // declared field type, e.g. "entity<Money>"
	Err    error
}

func (e *FieldError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s.%s: %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("%s.%s (%s): %v", e.Entity, e.Field, e.Type, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func outOfRange(offset, length int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, offset, length)
}
