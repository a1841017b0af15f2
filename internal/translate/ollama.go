package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// implements Generator using a local Ollama server
type OllamaGenerator struct {
	client      *api.Client
	model       string
	temperature float64
}

func NewOllamaGenerator(opts BackendOptions) (*OllamaGenerator, error) {
	host := opts.OllamaHost
	if host == "" {
		host = "http://localhost:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", host, err)
	}

	return newOllamaGenerator(api.NewClient(base, http.DefaultClient), opts), nil
}

func newOllamaGenerator(client *api.Client, opts BackendOptions) *OllamaGenerator {
	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderOllama)
	}
	return &OllamaGenerator{
		client:      client,
		model:       model,
		temperature: opts.Temperature,
	}
}

func (g *OllamaGenerator) Generate(
	ctx context.Context,
	prompt string,
) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": g.temperature,
		},
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	return sb.String(), nil
}
