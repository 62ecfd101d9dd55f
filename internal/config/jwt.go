package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrJWTSecretMissing is returned by NewJWTConfig when JWT_SECRET is unset.
// The server treats it as "authentication disabled".
var ErrJWTSecretMissing = errors.New("JWT_SECRET is required but not set")

// JWT defaults and limits.
const (
	DefaultJWTTTL    = 24 * time.Hour
	DefaultJWTIssuer = "resume-builder"
	minJWTSecretLen  = 16
	minJWTTTL        = time.Minute
)

// JWTConfig is how session tokens are signed and how long they live.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// NewJWTConfig reads JWT_SECRET (required, at least 16 bytes), JWT_TTL
// (a Go duration, default 24h) and JWT_ISSUER (default resume-builder).
func NewJWTConfig() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret: os.Getenv("JWT_SECRET"),
		TTL:    DefaultJWTTTL,
		Issuer: DefaultJWTIssuer,
	}
	if cfg.Secret == "" {
		return nil, ErrJWTSecretMissing
	}
	if raw := os.Getenv("JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL %q: %w", raw, err)
		}
		cfg.TTL = ttl
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		cfg.Issuer = issuer
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *JWTConfig) normalize() error {
	if len(c.Secret) < minJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	if c.TTL < minJWTTTL {
		return fmt.Errorf("JWT_TTL must be at least %s, got %s", minJWTTTL, c.TTL)
	}
	return nil
}
