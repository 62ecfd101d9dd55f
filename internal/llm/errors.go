package llm

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a provider failure.
type Kind string

// Failure kinds.
const (
	KindRateLimited  Kind = "rate_limited"
	KindUnauthorized Kind = "unauthorized"
	KindUnavailable  Kind = "unavailable"
	KindEmpty        Kind = "empty_response"
	KindOther        Kind = "other"
)

// APIError is a classified failure of the LLM provider.
type APIError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// classify maps REST and gRPC provider errors onto a Kind.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &APIError{Kind: kindForHTTP(apiErr.Code), Message: "generate content failed", Cause: err}
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return &APIError{Kind: kindForGRPC(st.Code()), Message: "generate content failed", Cause: err}
	}
	return &APIError{Kind: KindOther, Message: "generate content failed", Cause: err}
}

func kindForHTTP(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindUnauthorized
	case code >= 500:
		return KindUnavailable
	default:
		return KindOther
	}
}

func kindForGRPC(code codes.Code) Kind {
	switch code {
	case codes.ResourceExhausted:
		return KindRateLimited
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal:
		return KindUnavailable
	default:
		return KindOther
	}
}
