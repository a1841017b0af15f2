package config

import "github.com/mgpai22/subtrans/internal/translate"

const (
	ProviderOllama    = string(translate.ProviderOllama)
	ProviderGroq      = string(translate.ProviderGroq)
	ProviderOpenAI    = string(translate.ProviderOpenAI)
	ProviderAnthropic = string(translate.ProviderAnthropic)
	ProviderGemini    = string(translate.ProviderGemini)
)

const (
	DefaultSourceLanguage = "English"
	DefaultContextWindow  = 10
	DefaultTestLimit      = 200
	DefaultTemperature    = 0.3
	DefaultOllamaHost     = "http://localhost:11434"
)

var apiKeyEnvVars = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return translate.DefaultModel(translate.Provider(provider))
}

func Default() Config {
	return Config{
		Backend: Backend{
			Provider:    ProviderOllama,
			Temperature: DefaultTemperature,
			OllamaHost:  DefaultOllamaHost,
		},
		Translation: Translation{
			SourceLanguage: DefaultSourceLanguage,
			ContextWindow:  DefaultContextWindow,
			TestLimit:      DefaultTestLimit,
		},
		RateLimit: RateLimit{
			RequestsPerSecond: 0.5,
			Burst:             30,
		},
		Retry: Retry{
			MaxAttempts:      5,
			BaseDelaySeconds: 2,
			MaxDelaySeconds:  30,
		},
		Prompts: Prompts{
			Name: "subtitle_translator",
		},
	}
}
