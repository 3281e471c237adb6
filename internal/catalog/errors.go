package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist, or exists but is
	// outside the caller's ownership scope.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when registering an email that already
	// belongs to a user, compared case-insensitively.
	ErrEmailTaken = errors.New("email already registered")
)

// DanglingReferenceError is returned when a write names a parent record that
// does not exist.
type DanglingReferenceError struct {
	// Entity is the kind of record being written ("company", "property").
	Entity string

	// Field is the foreign-key field ("userId", "companyId").
	Field string

	// ID is the unresolved identifier.
	ID int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s.%s references missing record %d", e.Entity, e.Field, e.ID)
}
