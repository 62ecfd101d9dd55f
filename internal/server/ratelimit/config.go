package ratelimit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the budget for one route. Path matches exactly, by
// prefix when it ends in "/", or segment-wise when it contains "*".
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // requests per Window; 0 means unmetered
	Window time.Duration
	Burst  int // bucket capacity, Limit when 0
}

// LoadConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_DEFAULT_LIMIT,
// RATE_LIMIT_DEFAULT_WINDOW, RATE_LIMIT_CLEANUP_INTERVAL, RATE_LIMIT_IDLE_TTL,
// RATE_LIMIT_WHITELIST and RATE_LIMIT_BLACKLIST (comma-separated IPs).
// Malformed values are reported instead of silently replaced.
func LoadConfig() (*Config, error) {
	env := envReader{}

	enabled := env.bool("RATE_LIMIT_ENABLED", true)
	config := &Config{
		Enabled:         enabled,
		DefaultLimit:    env.int("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	if !enabled {
		return &Config{Enabled: false}, nil
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *Config) normalize() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("RATE_LIMIT_DEFAULT_LIMIT must be at least 1, got: %d", c.DefaultLimit)
	}
	if c.DefaultWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_DEFAULT_WINDOW must be at least 1s, got: %s", c.DefaultWindow)
	}
	for addr := range c.Whitelist {
		if c.Blacklist[addr] {
			return fmt.Errorf("IP %s is both whitelisted and blacklisted", addr)
		}
	}
	return nil
}

// DefaultEndpointConfigs returns the budgets of the expensive or mutating routes.
// Everything else falls back to the default limit; GET /health is never metered.
func DefaultEndpointConfigs() []EndpointConfig {
	const post, put, del = "POST", "PUT", "DELETE"

	// Language model calls and headless browser captures
	llm := EndpointConfig{Method: post, Limit: 20, Window: time.Hour, Burst: 5}
	pdf := EndpointConfig{Method: post, Limit: 60, Window: time.Hour, Burst: 5}
	// Writes and text exports
	write := EndpointConfig{Limit: 100, Window: time.Minute, Burst: 10}

	at := func(base EndpointConfig, method, path string) EndpointConfig {
		base.Path = path
		if method != "" {
			base.Method = method
		}
		return base
	}

	return []EndpointConfig{
		at(llm, "", "/analyze"),
		at(llm, "", "/match"),
		at(pdf, "", "/export/pdf"),
		at(pdf, "", "/sessions/*/export/pdf"),
		at(write, post, "/export/docx"),
		at(write, post, "/sessions/*/export/docx"),
		at(write, post, "/resumes"),
		at(write, put, "/resumes/"),
		at(write, del, "/resumes/"),
		at(write, post, "/sessions/*/save"),
		{Path: "/sessions", Method: post, Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// envReader parses typed environment variables, collecting every failure.
type envReader struct {
	errs []error
}

func (r *envReader) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %v", key, err))
		return def
	}
	return n
}

func (r *envReader) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %v", key, err))
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %v", key, err))
		return def
	}
	return d
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
