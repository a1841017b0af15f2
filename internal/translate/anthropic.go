package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Generator using Anthropic Claude
type AnthropicGenerator struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float64
}

func NewAnthropicGenerator(
	apiKey string,
	opts BackendOptions,
) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.Model(DefaultModel(ProviderAnthropic))
	}

	return &AnthropicGenerator{
		client:      anthropic.NewClient(requestOpts...),
		model:       model,
		temperature: opts.Temperature,
	}, nil
}

func (g *AnthropicGenerator) Generate(
	ctx context.Context,
	prompt string,
) (string, error) {
	message, err := g.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:       g.model,
			MaxTokens:   1024,
			Temperature: anthropic.Float(g.temperature),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("message request failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String(), nil
}
