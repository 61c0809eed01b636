// Package pdftext extracts plain text from PDF documents held in memory.
package pdftext

import "fmt"

// ReadError is returned when a document cannot be opened as a PDF.
type ReadError struct {
	Message string
	Cause   error
}

func (e *ReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("read error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("read error: %s", e.Message)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}
