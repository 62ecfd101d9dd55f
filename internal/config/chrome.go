// Package config provides headless Chrome configuration for image export.
package config

import (
	"fmt"
	"os"
	"time"
)

// ChromeConfig holds settings for the headless browser used by PDF export.
type ChromeConfig struct {
	ExecPath  string        // Browser binary; empty lets chromedp find one
	Timeout   time.Duration // Upper bound for one capture or print
	NoSandbox bool
}

// NewChromeConfig reads CHROME_PATH, EXPORT_TIMEOUT (default: 60s) and
// CHROME_NO_SANDBOX (default: true, needed inside most containers).
func NewChromeConfig() (*ChromeConfig, error) {
	config := &ChromeConfig{
		ExecPath:  os.Getenv("CHROME_PATH"),
		Timeout:   60 * time.Second,
		NoSandbox: true,
	}

	if v := os.Getenv("EXPORT_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPORT_TIMEOUT: %v", err)
		}
		config.Timeout = timeout
	}

	if v := os.Getenv("CHROME_NO_SANDBOX"); v == "false" || v == "0" {
		config.NoSandbox = false
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *ChromeConfig) normalize() error {
	if c.Timeout < time.Second {
		return fmt.Errorf("EXPORT_TIMEOUT must be at least 1s, got: %s", c.Timeout)
	}
	if c.ExecPath != "" {
		if _, err := os.Stat(c.ExecPath); err != nil {
			return fmt.Errorf("CHROME_PATH %s: %w", c.ExecPath, err)
		}
	}
	return nil
}
