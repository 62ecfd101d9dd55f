package main

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-cli-tests-minimum-32-chars")
	t.Setenv("JWT_TTL", "1h")

	output, err := executeCommand(t, "token", "--email", "jane@example.com", "--name", "Jane Doe")
	require.NoError(t, err)

	jwtConfig, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtConfig).ValidateToken(strings.TrimSpace(output))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Empty(t, claims.Picture)
}

func TestTokenCommand_Errors(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		_, err := executeCommand(t, "token", "--name", "Jane")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required flag(s) "email" not set`)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := executeCommand(t, "token", "--email", "jane@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrJWTSecretMissing)
	})
}
