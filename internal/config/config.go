// Package config provides configuration loading and validation for the CLI and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/rendering"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Server
	Port              int      `json:"port,omitempty"`                // HTTP listen port
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`     // CORS origins, "*" allows any
	SessionTTLMinutes int      `json:"session_ttl_minutes,omitempty"` // Idle editor sessions expire after this

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL, empty disables persistence
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key, empty disables analysis

	// Rendering
	Template   string `json:"template,omitempty"`    // Default template: modern, classic or minimal
	ChromePath string `json:"chrome_path,omitempty"` // Browser binary for PDF export

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		Port:              8080,
		AllowedOrigins:    []string{"*"},
		SessionTTLMinutes: 60,
		Template:          string(rendering.DefaultTemplate),
	}
}

// FromEnv reads PORT, DATABASE_URL, GEMINI_API_KEY, CORS_ALLOWED_ORIGINS,
// SESSION_TTL_MINUTES, RESUME_TEMPLATE and CHROME_PATH. Unset variables stay empty.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Template:    os.Getenv("RESUME_TEMPLATE"),
		ChromePath:  os.Getenv("CHROME_PATH"),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SESSION_TTL_MINUTES: %v", err)
		}
		cfg.SessionTTLMinutes = ttl
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("config error: 'session_ttl_minutes' must be non-negative")
	}

	if c.Template != "" {
		known := false
		for _, t := range rendering.Templates() {
			if string(t) == c.Template {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("config error: unknown template %q", c.Template)
		}
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// It is applied in layers: flags over file over environment over built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionTTLMinutes == 0 {
		result.SessionTTLMinutes = defaults.SessionTTLMinutes
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// SessionTTL returns the idle session timeout as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
