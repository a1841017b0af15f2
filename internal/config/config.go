package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Backend selects and parameterizes the text-generation backend.
type Backend struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	OllamaHost  string  `toml:"ollama_host"`
}

// Translation holds the context-windowed translator settings.
type Translation struct {
	SourceLanguage string `toml:"source_language"`
	ContextWindow  int    `toml:"context_window"`
	TestLimit      int    `toml:"test_limit"`
}

// RateLimit configures the token bucket used for remote backends.
type RateLimit struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Retry bounds the rate-limit retry loop.
type Retry struct {
	MaxAttempts      int     `toml:"max_attempts"`
	BaseDelaySeconds float64 `toml:"base_delay_seconds"`
	MaxDelaySeconds  float64 `toml:"max_delay_seconds"`
}

// Prompts locates the prompt template store. An empty Dir selects the
// built-in templates.
type Prompts struct {
	Dir  string `toml:"dir"`
	Name string `toml:"name"`
}

type Config struct {
	Backend     Backend     `toml:"backend"`
	Translation Translation `toml:"translation"`
	RateLimit   RateLimit   `toml:"rate_limit"`
	Retry       Retry       `toml:"retry"`
	Prompts     Prompts     `toml:"prompts"`

	env        map[string]string
	fileAPIKey string
}

// DefaultPath returns <UserConfigDir>/subtrans/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "subtrans", "config.toml")
}

// Load builds a Config from defaults, the TOML file at path, the .env file
// at envFile and the process environment, in that order of precedence
// (later wins).
//
// An empty path falls back to DefaultPath; a missing default file is not an
// error, but a missing explicit path is. A missing .env file is ignored.
//
// The file's api_key is kept aside so a provider's key variable overrides
// it; Backend.APIKey is left for explicit overrides such as --api-key.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.fileAPIKey, cfg.Backend.APIKey = cfg.Backend.APIKey, ""

	env, err := readEnv(envFile)
	if err != nil {
		return nil, err
	}
	cfg.env = env
	cfg.applyEnv(env)
	cfg.normalize()

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// merges the .env file (if any) under the process environment
func readEnv(envFile string) (map[string]string, error) {
	env := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
		for k, v := range values {
			env[k] = v
		}
	}

	for _, key := range envKeys() {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			env[key] = v
		}
	}
	return env, nil
}

// APIKey returns the credential for the configured provider: the explicit
// Backend.APIKey if set, then the provider's environment variable (process
// or .env), then api_key from the config file.
func (c *Config) APIKey() string {
	if c.Backend.APIKey != "" {
		return c.Backend.APIKey
	}
	if name := APIKeyEnvVar(c.Backend.Provider); name != "" {
		if v := c.env[name]; v != "" {
			return v
		}
	}
	return c.fileAPIKey
}

// Model returns the configured model or the provider's default.
func (c *Config) Model() string {
	if c.Backend.Model != "" {
		return c.Backend.Model
	}
	return DefaultModel(c.Backend.Provider)
}

// APIKeyEnvVar returns the environment variable holding the credential for
// provider, or "" when the provider needs none.
func APIKeyEnvVar(provider string) string {
	return apiKeyEnvVars[provider]
}

// RequiresAPIKey reports whether provider is a remote backend.
func RequiresAPIKey(provider string) bool {
	_, ok := apiKeyEnvVars[provider]
	return ok
}
