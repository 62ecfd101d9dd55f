// Package llm provides the model configuration and client used for resume analysis.
package llm

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
)

// ModelTier selects a model by cost and capability.
type ModelTier string

const (
	// TierLite serves keyword matching and short structured answers.
	TierLite ModelTier = "lite"
	// TierStandard serves full resume analysis.
	TierStandard ModelTier = "standard"
)

// Provider names an LLM backend.
type Provider string

// ProviderGemini is Google Gemini.
const ProviderGemini Provider = "gemini"

// Config selects the provider, the model per tier and the sampling settings.
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the Gemini setup used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:     0.2,
		MaxOutputTokens: 2048,
	}
}

// ConfigFromEnv applies GEMINI_MODEL, GEMINI_LITE_MODEL, GEMINI_TEMPERATURE
// and GEMINI_MAX_OUTPUT_TOKENS over DefaultConfig.
func ConfigFromEnv() (*Config, error) {
	config := DefaultConfig()
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Models[TierStandard] = model
	}
	if model := os.Getenv("GEMINI_LITE_MODEL"); model != "" {
		config.Models[TierLite] = model
	}

	var errs []error
	if raw := os.Getenv("GEMINI_TEMPERATURE"); raw != "" {
		t, err := strconv.ParseFloat(raw, 32)
		if err != nil || t < 0 || t > 2 {
			errs = append(errs, fmt.Errorf("invalid GEMINI_TEMPERATURE %q: want a number between 0 and 2", raw))
		} else {
			config.Temperature = float32(t)
		}
	}
	if raw := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("invalid GEMINI_MAX_OUTPUT_TOKENS %q", raw))
		} else {
			config.MaxOutputTokens = int32(n)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return config, nil
}

// Model returns the model for tier. A tier without its own model borrows
// the standard one, then the lite one; "" means nothing is configured.
func (c *Config) Model(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c that uses model for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	clone := *c
	clone.Models = maps.Clone(c.Models)
	if clone.Models == nil {
		clone.Models = make(map[ModelTier]string)
	}
	clone.Models[tier] = model
	return &clone
}
