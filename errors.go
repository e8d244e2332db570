package lazyobj

import (
	"errors"
	"fmt"
)

var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyReadOnly     = errors.New("property is read only")
	ErrPropertyTypeMismatch = errors.New("property type mismatch")
	ErrDuplicateProperty    = errors.New("duplicate property")
	ErrNilProducer          = errors.New("producer can not be nil")
	ErrInvalidSchema        = errors.New("invalid schema")
	ErrInvalidCachePolicy   = errors.New("invalid cache policy")
)

func propertyError(err error, name string) error {
	return fmt.Errorf("%w: %s", err, name)
}

// EvaluationError is returned by Get when the producer bound to a property fails.
type EvaluationError struct {
	Property string
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate property %q: %s", e.Property, e.Err.Error())
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
