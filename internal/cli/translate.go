package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mgpai22/subtrans/internal/config"
	"github.com/mgpai22/subtrans/internal/prompt"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/translate"
	"github.com/spf13/cobra"
)

// swapped out in tests
var newGenerator = translate.NewGenerator

var translateCmd = &cobra.Command{
	Use:   "translate <input.srt> <target_lang> [output.srt]",
	Short: "Translate a subtitle file to another language",
	Long: `Translate an SRT subtitle file into the target language.

Each entry is translated on its own, with up to --context-window preceding
original lines passed to the model as context. Indices and timestamps are
copied through unchanged and empty entries are never sent to the model.

When no output path is given, ".srt" in the input name is replaced with
".<target_lang>.srt".

Examples:
  subtrans translate movie.srt French
  subtrans translate movie.srt German movie.de.srt --provider groq
  subtrans translate movie.srt Spanish --test -s auto
  subtrans translate show.srt Japanese --provider ollama --model qwen3:14b`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		Bool("test", false, "Translate only the first entries (see test_limit in the config)")
	translateCmd.Flags().
		Int("limit", 0, "Translate only the first N entries")
	translateCmd.Flags().
		StringP("source-lang", "s", "", "Source language name, or \"auto\" to detect it (default: English)")
	translateCmd.Flags().
		String("provider", "", "Backend provider (ollama, groq, openai, anthropic, gemini)")
	translateCmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Float64("temperature", 0, "Sampling temperature")
	translateCmd.Flags().
		Int("context-window", 0, "Number of preceding lines passed as context")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GROQ_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY/GEMINI_API_KEY)")
	translateCmd.Flags().
		String("prompts-dir", "", "Directory with prompt YAML files (default: built-in prompts)")
	translateCmd.Flags().
		String("prompt", "", "Prompt name to load from the prompts directory")
	translateCmd.Flags().
		String("config", "", "Path to a TOML config file")
	translateCmd.Flags().
		String("env-file", ".env", "Path to a .env file with credentials")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inputPath := args[0]
	targetLang := strings.TrimSpace(args[1])

	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %w", err)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}
	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if len(args) == 3 {
		outputPath = args[2]
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, targetLang)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if test, _ := cmd.Flags().GetBool("test"); test && limit <= 0 {
		limit = cfg.Translation.TestLimit
	}
	if limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", limit)
	}

	sourceLang := cfg.Translation.SourceLanguage
	if strings.EqualFold(sourceLang, targetLang) {
		return fmt.Errorf(
			"source language %q and target language %q cannot be the same",
			sourceLang,
			targetLang,
		)
	}

	runLogger := logger.With("run_id", uuid.NewString())
	runLogger.Infow("Starting subtitle translation",
		"input", inputPath,
		"output", outputPath,
		"target_language", targetLang,
		"source_language", sourceLang,
		"provider", cfg.Backend.Provider,
		"model", cfg.Model(),
		"context_window", cfg.Translation.ContextWindow,
		"limit", limit,
	)

	records, err := subtitle.Parse(inputPath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}
	runLogger.Infow("Parsed subtitle file", "entries", len(records))

	tmpl, err := prompt.Load(cfg.Prompts.Dir, cfg.Prompts.Name)
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}

	gen, err := newGenerator(
		ctx,
		translate.Provider(cfg.Backend.Provider),
		cfg.APIKey(),
		backendOptions(cfg),
	)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	total := len(records)
	if limit > 0 && limit < total {
		total = limit
	}
	progress, finish := newProgress(total, runLogger)

	translator, err := translate.NewContextTranslator(gen, tmpl, translate.Options{
		ContextWindow: cfg.Translation.ContextWindow,
		Retry:         retryPolicy(cfg),
		Logger:        runLogger,
		Progress:      progress,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	translated, err := translator.Translate(ctx, records, translate.Request{
		TargetLanguage: targetLang,
		SourceLanguage: sourceLang,
		Limit:          limit,
	})
	finish()
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	runLogger.Infow("Writing output file", "entries", len(translated))
	if err := subtitle.Save(translated, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subtitles translated successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Entries: %d\n", len(translated))
	fmt.Fprintf(out, "  Target language: %s\n", targetLang)
	if limit > 0 {
		fmt.Fprintf(out, "  Mode: first %d entries only\n", limit)
	}

	return nil
}

// loads the config and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Backend.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Backend.Model, _ = flags.GetString("model")
	}
	if flags.Changed("temperature") {
		cfg.Backend.Temperature, _ = flags.GetFloat64("temperature")
	}
	if flags.Changed("context-window") {
		cfg.Translation.ContextWindow, _ = flags.GetInt("context-window")
	}
	if flags.Changed("api-key") {
		cfg.Backend.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("prompts-dir") {
		cfg.Prompts.Dir, _ = flags.GetString("prompts-dir")
	}
	if flags.Changed("prompt") {
		cfg.Prompts.Name, _ = flags.GetString("prompt")
	}
	if flags.Changed("source-lang") {
		cfg.Translation.SourceLanguage, _ = flags.GetString("source-lang")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func backendOptions(cfg *config.Config) translate.BackendOptions {
	return translate.BackendOptions{
		Model:       cfg.Model(),
		Temperature: cfg.Backend.Temperature,
		BaseURL:     cfg.Backend.BaseURL,
		OllamaHost:  cfg.Backend.OllamaHost,
		RateLimit: translate.RateLimitOptions{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		},
	}
}

func retryPolicy(cfg *config.Config) translate.RetryPolicy {
	return translate.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   seconds(cfg.Retry.BaseDelaySeconds),
		MaxDelay:    seconds(cfg.Retry.MaxDelaySeconds),
	}
}

// movie.srt + French -> movie.french.srt
func defaultOutputPath(inputPath, targetLang string) string {
	suffix := "." + strings.ToLower(targetLang) + ".srt"
	ext := filepath.Ext(inputPath)
	if strings.EqualFold(ext, ".srt") {
		return strings.TrimSuffix(inputPath, ext) + suffix
	}
	return inputPath + suffix
}
