package translate

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// waits on a token bucket before every call to the wrapped generator
type RateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

func NewRateLimitedGenerator(
	next Generator,
	limiter *rate.Limiter,
) *RateLimitedGenerator {
	return &RateLimitedGenerator{next: next, limiter: limiter}
}

func (g *RateLimitedGenerator) Generate(
	ctx context.Context,
	prompt string,
) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for request slot: %w", err)
	}
	return g.next.Generate(ctx, prompt)
}
