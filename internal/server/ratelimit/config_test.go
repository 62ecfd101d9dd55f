package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearRateLimitEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_DEFAULT_LIMIT", "RATE_LIMIT_DEFAULT_WINDOW",
		"RATE_LIMIT_CLEANUP_INTERVAL", "RATE_LIMIT_IDLE_TTL", "RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearRateLimitEnv(t)

	config, err := LoadConfig()

	require.NoError(t, err)
	assert.True(t, config.Enabled)
	assert.Equal(t, 1000, config.DefaultLimit)
	assert.Equal(t, time.Minute, config.DefaultWindow)
	assert.Equal(t, time.Hour, config.IdleTTL)
	assert.Empty(t, config.Whitelist)
	assert.Equal(t, DefaultEndpointConfigs(), config.EndpointConfigs)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearRateLimitEnv(t)
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", " 127.0.0.1 , ,10.0.0.1")
	t.Setenv("RATE_LIMIT_BLACKLIST", "203.0.113.9")

	config, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 50, config.DefaultLimit)
	assert.Equal(t, 30*time.Second, config.DefaultWindow)
	assert.Equal(t, map[string]bool{"127.0.0.1": true, "10.0.0.1": true}, config.Whitelist)
	assert.True(t, config.Blacklist["203.0.113.9"])
}

func TestLoadConfig_Disabled(t *testing.T) {
	clearRateLimitEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "0")

	config, err := LoadConfig()

	require.NoError(t, err)
	assert.False(t, config.Enabled)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr []string
	}{
		{"bad limit", map[string]string{"RATE_LIMIT_DEFAULT_LIMIT": "lots"}, []string{"invalid RATE_LIMIT_DEFAULT_LIMIT"}},
		{"all parse errors reported", map[string]string{"RATE_LIMIT_ENABLED": "maybe", "RATE_LIMIT_IDLE_TTL": "1 hour"}, []string{"invalid RATE_LIMIT_ENABLED", "invalid RATE_LIMIT_IDLE_TTL"}},
		{"zero limit", map[string]string{"RATE_LIMIT_DEFAULT_LIMIT": "0"}, []string{"at least 1"}},
		{"window too short", map[string]string{"RATE_LIMIT_DEFAULT_WINDOW": "10ms"}, []string{"at least 1s"}},
		{"listed twice", map[string]string{"RATE_LIMIT_WHITELIST": "10.0.0.1", "RATE_LIMIT_BLACKLIST": "10.0.0.1"}, []string{"both whitelisted and blacklisted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRateLimitEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()

			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
