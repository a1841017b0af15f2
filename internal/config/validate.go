package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredential is returned when a remote provider has no API key.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrInvalid wraps every other validation failure.
	ErrInvalid = errors.New("invalid configuration")
)

func (c *Config) normalize() {
	c.Backend.Provider = strings.ToLower(strings.TrimSpace(c.Backend.Provider))
	c.Backend.Model = strings.TrimSpace(c.Backend.Model)
	c.Backend.APIKey = strings.TrimSpace(c.Backend.APIKey)
	c.fileAPIKey = strings.TrimSpace(c.fileAPIKey)
	c.Translation.SourceLanguage = strings.TrimSpace(c.Translation.SourceLanguage)
	if c.Translation.SourceLanguage == "" {
		c.Translation.SourceLanguage = DefaultSourceLanguage
	}
	if c.Prompts.Name == "" {
		c.Prompts.Name = "subtitle_translator"
	}
}

// Validate normalizes c and reports the first problem found.
func (c *Config) Validate() error {
	c.normalize()

	if _, ok := defaultModels[c.Backend.Provider]; !ok {
		return fmt.Errorf(
			"%w: unsupported provider %q (use ollama, groq, openai, anthropic or gemini)",
			ErrInvalid,
			c.Backend.Provider,
		)
	}
	if c.Backend.Temperature < 0 || c.Backend.Temperature > 2 {
		return fmt.Errorf(
			"%w: temperature must be between 0 and 2, got %g",
			ErrInvalid,
			c.Backend.Temperature,
		)
	}
	if c.Translation.ContextWindow < 0 {
		return fmt.Errorf(
			"%w: context window must not be negative, got %d",
			ErrInvalid,
			c.Translation.ContextWindow,
		)
	}
	if c.Translation.TestLimit <= 0 {
		return fmt.Errorf(
			"%w: test limit must be positive, got %d",
			ErrInvalid,
			c.Translation.TestLimit,
		)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf(
			"%w: retry max_attempts must be positive, got %d",
			ErrInvalid,
			c.Retry.MaxAttempts,
		)
	}
	if c.Retry.BaseDelaySeconds < 0 || c.Retry.MaxDelaySeconds < c.Retry.BaseDelaySeconds {
		return fmt.Errorf(
			"%w: retry delays must satisfy 0 <= base_delay_seconds <= max_delay_seconds",
			ErrInvalid,
		)
	}

	if RequiresAPIKey(c.Backend.Provider) {
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
			return fmt.Errorf(
				"%w: rate limit requires positive requests_per_second and burst",
				ErrInvalid,
			)
		}
		if c.APIKey() == "" {
			return fmt.Errorf(
				"%w: provider %s needs --api-key or the %s environment variable",
				ErrMissingCredential,
				c.Backend.Provider,
				APIKeyEnvVar(c.Backend.Provider),
			)
		}
	}

	return nil
}
