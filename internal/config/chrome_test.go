package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromeConfig_Defaults(t *testing.T) {
	t.Setenv("CHROME_PATH", "")
	t.Setenv("EXPORT_TIMEOUT", "")
	t.Setenv("CHROME_NO_SANDBOX", "")

	cfg, err := NewChromeConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.ExecPath)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.True(t, cfg.NoSandbox)
}

func TestNewChromeConfig_Overrides(t *testing.T) {
	t.Setenv("EXPORT_TIMEOUT", "15s")
	t.Setenv("CHROME_NO_SANDBOX", "false")

	cfg, err := NewChromeConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.False(t, cfg.NoSandbox)
}

func TestNewChromeConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad duration", map[string]string{"EXPORT_TIMEOUT": "soon"}, "invalid EXPORT_TIMEOUT"},
		{"too short", map[string]string{"EXPORT_TIMEOUT": "10ms"}, "at least 1s"},
		{"missing binary", map[string]string{"CHROME_PATH": "/nonexistent/chrome"}, "CHROME_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EXPORT_TIMEOUT", "")
			t.Setenv("CHROME_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := NewChromeConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
