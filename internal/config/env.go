package config

import (
	"strconv"
	"strings"
)

const (
	envProvider      = "SUBTRANS_PROVIDER"
	envModel         = "SUBTRANS_MODEL"
	envTemperature   = "SUBTRANS_TEMPERATURE"
	envBaseURL       = "SUBTRANS_BASE_URL"
	envContextWindow = "SUBTRANS_CONTEXT_WINDOW"
	envSourceLang    = "SUBTRANS_SOURCE_LANGUAGE"
	envPromptsDir    = "SUBTRANS_PROMPTS_DIR"
	envOllamaHost    = "OLLAMA_HOST"
)

func envKeys() []string {
	keys := []string{
		envProvider,
		envModel,
		envTemperature,
		envBaseURL,
		envContextWindow,
		envSourceLang,
		envPromptsDir,
		envOllamaHost,
	}
	for _, v := range apiKeyEnvVars {
		keys = append(keys, v)
	}
	return keys
}

func (c *Config) applyEnv(env map[string]string) {
	if v := env[envProvider]; v != "" {
		c.Backend.Provider = v
	}
	if v := env[envModel]; v != "" {
		c.Backend.Model = v
	}
	if v := env[envTemperature]; v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Backend.Temperature = f
		}
	}
	if v := env[envBaseURL]; v != "" {
		c.Backend.BaseURL = v
	}
	if v := env[envContextWindow]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Translation.ContextWindow = n
		}
	}
	if v := env[envSourceLang]; v != "" {
		c.Translation.SourceLanguage = v
	}
	if v := env[envPromptsDir]; v != "" {
		c.Prompts.Dir = v
	}
	if v := env[envOllamaHost]; v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		c.Backend.OllamaHost = v
	}
}
