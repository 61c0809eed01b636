// Package catalog reconciles stored exercise counts with estimates computed from the documents themselves.
package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// UpdateError represents a failed write of an exercise count
type UpdateError struct {
	ID    uuid.UUID
	Count int
	Cause error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update error: exercise %s to %d: %v", e.ID, e.Count, e.Cause)
}

func (e *UpdateError) Unwrap() error {
	return e.Cause
}

// InvalidRecordError represents a stored record that cannot be processed
type InvalidRecordError struct {
	Message string
	Cause   error
}

func (e *InvalidRecordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid record: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid record: %s", e.Message)
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Cause
}
