package script

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput: the reply was empty or whitespace only.
	ErrEmptyInput = errors.New("script: empty input")
	// ErrNoStructureFound: no '{' in the reply.
	ErrNoStructureFound = errors.New("script: no structure found")
	// ErrUnrecoverablePayload: salvage found no id/claim/main_question triple.
	ErrUnrecoverablePayload = errors.New("script: unrecoverable payload")
)

// ValidationError reports the first structural check a candidate failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("script: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
