package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"port": 9090,
		"database_url": "postgres://localhost/resume",
		"allowed_origins": ["http://localhost:3000"],
		"template": "classic",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/resume", cfg.DatabaseURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "classic", cfg.Template)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"empty", Config{}, ""},
		{"port too large", Config{Port: 70000}, "'port'"},
		{"negative port", Config{Port: -1}, "'port'"},
		{"negative ttl", Config{SessionTTLMinutes: -5}, "session_ttl_minutes"},
		{"unknown template", Config{Template: "fancy"}, "unknown template"},
		{"missing chrome", Config{ChromePath: "/nonexistent/chrome"}, "chrome binary not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Port:     9090,
		Template: "minimal",
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "minimal", merged.Template)

	// Default values should fill in empty fields
	assert.Equal(t, []string{"*"}, merged.AllowedOrigins)
	assert.Equal(t, 60, merged.SessionTTLMinutes)
	assert.Equal(t, "60m0s", merged.SessionTTL().String())
}

func TestMergeWithDefaults_Layers(t *testing.T) {
	file := Config{DatabaseURL: "postgres://file"}
	env := Config{DatabaseURL: "postgres://env", APIKey: "env-key"}

	merged := file.MergeWithDefaults(env)
	merged = merged.MergeWithDefaults(Defaults())

	assert.Equal(t, "postgres://file", merged.DatabaseURL)
	assert.Equal(t, "env-key", merged.APIKey)
	assert.Equal(t, 8080, merged.Port)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "3001")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SESSION_TTL_MINUTES", "15")
	t.Setenv("RESUME_TEMPLATE", "classic")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 15, cfg.SessionTTLMinutes)
	assert.Equal(t, "classic", cfg.Template)
}

func TestFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}
