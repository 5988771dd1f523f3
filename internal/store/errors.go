package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by every Store implementation. Services translate
// them into domain errors with user-facing messages.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrReferenceMissing = errors.New("referenced row does not exist")
)

// ConstraintError reports a violated database constraint. It unwraps to one of
// the sentinels above so callers can use errors.Is.
type ConstraintError struct {
	Kind   error
	Detail string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *ConstraintError) Unwrap() error { return e.Kind }
