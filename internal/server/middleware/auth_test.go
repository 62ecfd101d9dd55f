package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]Identity
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]Identity)}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (IdentityGetter, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	identity, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(identity), nil
}

type testClaims Identity

func (c testClaims) GetIdentity() Identity {
	return Identity(c)
}

// captureIdentity runs the middleware and reports the identity the handler saw.
func captureIdentity(t *testing.T, validator TokenValidator, authHeader string) (Identity, bool) {
	t.Helper()

	var got Identity
	var ok, called bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, ok = GetIdentity(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	OptionalAuth(validator)(handler).ServeHTTP(w, req)

	require.True(t, called, "handler should always be called")
	assert.Equal(t, http.StatusOK, w.Code)
	return got, ok
}

func TestOptionalAuth(t *testing.T) {
	validator := newTestTokenValidator()
	jane := Identity{Email: "jane@example.com", Name: "Jane Doe", Picture: "https://example.com/j.png"}
	validator.validTokens["valid-token"] = jane
	validator.validTokens["no-email"] = Identity{Name: "Nobody"}

	tests := []struct {
		name         string
		header       string
		wantOK       bool
		wantIdentity Identity
	}{
		{"valid token", "Bearer valid-token", true, jane},
		{"lowercase scheme", "bearer valid-token", true, jane},
		{"no header", "", false, Identity{}},
		{"invalid token", "Bearer nope", false, Identity{}},
		{"wrong scheme", "Basic valid-token", false, Identity{}},
		{"missing token", "Bearer", false, Identity{}},
		{"extra parts", "Bearer valid-token extra", false, Identity{}},
		{"token without email", "Bearer no-email", false, Identity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := captureIdentity(t, validator, tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIdentity, got)
		})
	}
}

func TestOptionalAuth_NilValidator(t *testing.T) {
	_, ok := captureIdentity(t, nil, "Bearer anything")
	assert.False(t, ok)
}

func TestRequireIdentity(t *testing.T) {
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resumes", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unauthenticated", body["code"])
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{Email: "jane@example.com"}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
