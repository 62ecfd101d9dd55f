// Package export produces downloadable resume artifacts: a page-image PDF
// captured from the rendered view and a DOCX built from the document text.
package export

import "fmt"

// RenderCaptureError means the rendered surface could not be captured or printed.
// The editing session is unaffected and the export can be retried.
type RenderCaptureError struct {
	Message string
	Cause   error
}

func (e *RenderCaptureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render capture error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render capture error: %s", e.Message)
}

func (e *RenderCaptureError) Unwrap() error {
	return e.Cause
}

// ExportSerializationError is an unexpected failure while building a text artifact.
type ExportSerializationError struct {
	Message string
	Cause   error
}

func (e *ExportSerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export serialization error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export serialization error: %s", e.Message)
}

func (e *ExportSerializationError) Unwrap() error {
	return e.Cause
}
