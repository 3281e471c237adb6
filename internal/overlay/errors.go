package overlay

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by Update when every compare-and-swap attempt lost
// to a concurrent writer.
var ErrConflict = errors.New("overlay: concurrent update conflict")

// DecodeError describes stored overlay content that could not be used.
// It is logged and counted, never returned to callers of ReadAll.
type DecodeError struct {
	// Key is the overlay key the content was read from.
	Key string

	// Index is the position of the offending record in the stored array,
	// or -1 when the whole document is unusable.
	Index int

	// Reason is a short machine-friendly label ("malformed", "invalid_record").
	Reason string

	Err error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("overlay %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("overlay %s[%d]: %s: %v", e.Key, e.Index, e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
