package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go"
)

// ErrRateLimitExceeded is returned once rate-limit retries are exhausted.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// bounded retry with doubling backoff for rate-limit failures
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first call
	BaseDelay   time.Duration // wait after the first failure
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// wait after the given failed attempt (1-based)
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// IsRateLimit reports whether err is a backend rate-limit signal.
func IsRateLimit(err error) bool {
	if err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) &&
		openaiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) &&
		anthropicErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	var ollamaErr api.StatusError
	if errors.As(err, &ollamaErr) &&
		ollamaErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted")
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retries the wrapped generator on rate-limit errors only
type retryingGenerator struct {
	next   Generator
	policy RetryPolicy
	sleep  sleepFunc
	onWait func(attempt int, delay time.Duration, err error)
}

func (g *retryingGenerator) Generate(
	ctx context.Context,
	prompt string,
) (string, error) {
	attempts := g.policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := g.next.Generate(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		delay := g.policy.delay(attempt)
		if g.onWait != nil {
			g.onWait(attempt, delay, err)
		}
		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf(
		"%w after %d attempts: %w",
		ErrRateLimitExceeded,
		attempts,
		lastErr,
	)
}
