package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand_List(t *testing.T) {
	output, err := executeCommand(t, "migrate", "--list")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "0001_"), lines[0])
}

func TestMigrateCommand_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := executeCommand(t, "migrate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}
