package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest company or property name accepted.
const MaxNameLength = 100

var (
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
	comEmail   = regexp.MustCompile(`^\S+@\S+\.com$`)
)

// ValidationError reports a rejected input field. Nothing is written when
// a service returns one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func required(field, value string) error {
	if blank(value) {
		return invalid(field, "is required")
	}
	return nil
}

func checkName(field, value string) error {
	if err := required(field, value); err != nil {
		return err
	}
	if utf8.RuneCountInString(value) > MaxNameLength {
		return invalid(field, fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
