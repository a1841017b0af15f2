package translate

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// single text-generation capability shared by every backend
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// text-generation backend provider
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

var defaultModels = map[Provider]string{
	ProviderOllama:    "deepseek-r1:32b",
	ProviderGroq:      "deepseek-r1-distill-llama-70b",
	ProviderOpenAI:    "gpt-5-mini",
	ProviderAnthropic: "claude-haiku-4-5",
	ProviderGemini:    "gemini-2.5-flash",
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// reports whether the provider is a remote, rate-limited API
func (p Provider) Remote() bool {
	return p != ProviderOllama
}

type RateLimitOptions struct {
	RequestsPerSecond float64
	Burst             int
}

type BackendOptions struct {
	Model       string
	Temperature float64
	BaseURL     string // overrides the provider endpoint (groq/openai)
	OllamaHost  string
	RateLimit   RateLimitOptions
}

// creates a Generator for provider; remote providers are wrapped in a
// token-bucket limiter
func NewGenerator(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts BackendOptions,
) (Generator, error) {
	var (
		gen Generator
		err error
	)

	if opts.Model == "" {
		opts.Model = DefaultModel(provider)
	}

	switch provider {
	case ProviderOllama:
		return NewOllamaGenerator(opts)
	case ProviderGroq:
		if opts.BaseURL == "" {
			opts.BaseURL = GroqBaseURL
		}
		gen, err = NewOpenAIGenerator(apiKey, opts)
	case ProviderOpenAI:
		gen, err = NewOpenAIGenerator(apiKey, opts)
	case ProviderAnthropic:
		gen, err = NewAnthropicGenerator(apiKey, opts)
	case ProviderGemini:
		gen, err = NewGeminiGenerator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	if opts.RateLimit.RequestsPerSecond <= 0 || opts.RateLimit.Burst <= 0 {
		return nil, fmt.Errorf(
			"rate limit for %s requires positive requests per second and burst",
			provider,
		)
	}
	limiter := rate.NewLimiter(
		rate.Limit(opts.RateLimit.RequestsPerSecond),
		opts.RateLimit.Burst,
	)
	return NewRateLimitedGenerator(gen, limiter), nil
}

// cuts s to at most maxLen runes
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
