package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrStoreUnavailable indicates the document store could not be reached.
// The editor keeps working; only persistence is affected.
type ErrStoreUnavailable struct {
	Cause error
}

func (e *ErrStoreUnavailable) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document store unavailable: %v", e.Cause)
	}
	return "document store unavailable"
}

func (e *ErrStoreUnavailable) Unwrap() error {
	return e.Cause
}

// Error codes returned in the "code" field of error bodies.
const (
	CodeValidation       = "validation_error"
	CodeUnauthenticated  = "unauthenticated"
	CodeNotFound         = "not_found"
	CodeExportInProgress = "export_in_progress"
	CodeRateLimited      = "rate_limited"
	CodeCaptureFailed    = "capture_failed"
	CodeUpstreamFailed   = "upstream_failed"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal_error"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorCode returns the machine-readable code for an error
func ErrorCode(err error) string {
	_, code := classify(err)
	return code
}

func classify(err error) (int, string) {
	var (
		validationErr *ErrValidation
		editorErr     *editor.ValidationError
		schemaErr     *schemas.ValidationError
		notFoundErr   *ErrNotFound
		storeErr      *ErrStoreUnavailable
		serviceErr    *analysis.ServiceError
		captureErr    *export.RenderCaptureError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &editorErr), errors.As(err, &schemaErr),
		errors.Is(err, analysis.ErrEmptyInput):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, CodeUnauthenticated
	case errors.As(err, &notFoundErr), errors.Is(err, editor.ErrEntryNotFound), errors.Is(err, editor.ErrSessionNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, editor.ErrExportInProgress):
		return http.StatusConflict, CodeExportInProgress
	case errors.As(err, &serviceErr):
		switch serviceErr.Kind {
		case analysis.KindRateLimited:
			return http.StatusTooManyRequests, CodeRateLimited
		case analysis.KindUnavailable:
			return http.StatusServiceUnavailable, CodeUnavailable
		default:
			return http.StatusBadGateway, CodeUpstreamFailed
		}
	case errors.As(err, &captureErr):
		return http.StatusBadGateway, CodeCaptureFailed
	case errors.As(err, &storeErr), errors.Is(err, db.ErrNotConfigured), errors.Is(err, db.ErrClosed):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errUnauthenticated is returned by handlers that need an identity.
var errUnauthenticated = errors.New("authentication required")

// publicMessage is the error text shown to clients. Internal failures are not echoed.
func publicMessage(err error, status int) string {
	var captureErr *export.RenderCaptureError
	var serviceErr *analysis.ServiceError
	switch {
	case status == http.StatusInternalServerError:
		return "internal server error"
	case errors.As(err, &captureErr):
		return "Failed to capture the resume preview, please try again"
	case errors.As(err, &serviceErr):
		return serviceErr.Message
	case status == http.StatusServiceUnavailable:
		return "document store unavailable"
	}
	return err.Error()
}
