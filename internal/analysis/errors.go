package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-builder/internal/llm"
)

// ErrEmptyInput is returned when the resume text (or the job description for matching) is blank.
var ErrEmptyInput = errors.New("resume text is required")

// Kind classifies a ServiceError.
type Kind string

// Service error kinds.
const (
	KindUnavailable Kind = "unavailable"
	KindRateLimited Kind = "rate_limited"
	KindFailed      Kind = "failed"
)

// ServiceError represents a failure of the analysis service
type ServiceError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis %s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// serviceError maps a client failure onto a ServiceError.
func serviceError(err error) *ServiceError {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case llm.KindRateLimited:
			return &ServiceError{Kind: KindRateLimited, Message: "rate limit exceeded, please try again later", Cause: err}
		case llm.KindUnavailable, llm.KindUnauthorized:
			return &ServiceError{Kind: KindUnavailable, Message: "AI service temporarily unavailable", Cause: err}
		case llm.KindEmpty:
			return &ServiceError{Kind: KindFailed, Message: "no response from AI service", Cause: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Kind: KindUnavailable, Message: "AI service timed out", Cause: err}
	}
	return &ServiceError{Kind: KindFailed, Message: "failed to analyze resume", Cause: err}
}
