package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

// implements Generator using OpenAI-compatible Chat Completions
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAIGenerator(
	apiKey string,
	opts BackendOptions,
) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// rate-limit retries are handled by the translator
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderOpenAI)
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(requestOpts...),
		model:       model,
		temperature: opts.Temperature,
	}, nil
}

func (g *OpenAIGenerator) Generate(
	ctx context.Context,
	prompt string,
) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: g.model,
	}
	if supportsTemperature(g.model) {
		params.Temperature = openai.Float(g.temperature)
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", g.model)
	}

	return completion.Choices[0].Message.Content, nil
}

// reasoning model families only accept their default sampling temperature
var fixedTemperatureModels = []string{"gpt-5", "o1", "o3", "o4"}

// reports whether model accepts a custom temperature
func supportsTemperature(model string) bool {
	name := strings.ToLower(model)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasPrefix(name, "gpt-5") && strings.Contains(name, "-chat") {
		return true
	}
	for _, family := range fixedTemperatureModels {
		if name == family || strings.HasPrefix(name, family+"-") {
			return false
		}
	}
	return true
}
