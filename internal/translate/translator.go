package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/prompt"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

// placeholders every translation prompt must declare and use
var RequiredPlaceholders = []string{
	"context",
	"current_line",
	"source_lang",
	"target_lang",
}

// ErrSameLanguage is returned when the source and target languages match.
var ErrSameLanguage = errors.New("source and target languages are the same")

// called after every processed entry
type ProgressFunc func(done, total int)

type Options struct {
	// number of preceding original entries sent as context
	ContextWindow int
	Retry         RetryPolicy
	Logger        *logging.Logger
	Progress      ProgressFunc
}

// one translation run
type Request struct {
	TargetLanguage string
	SourceLanguage string // empty means English, SourceAuto detects it
	Limit          int    // translate only the first Limit entries when > 0
}

// translates entries one at a time, giving the model the preceding original
// lines as context
type ContextTranslator struct {
	gen           Generator
	template      *prompt.Template
	contextWindow int
	logger        *logging.Logger
	progress      ProgressFunc
}

func NewContextTranslator(
	gen Generator,
	tmpl *prompt.Template,
	opts Options,
) (*ContextTranslator, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if tmpl == nil {
		return nil, errors.New("prompt template is required")
	}
	if err := tmpl.Require(RequiredPlaceholders...); err != nil {
		return nil, err
	}
	if opts.ContextWindow < 0 {
		return nil, fmt.Errorf(
			"context window must not be negative, got %d",
			opts.ContextWindow,
		)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	policy := opts.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}

	retry := &retryingGenerator{
		next:   gen,
		policy: policy,
		sleep:  sleepContext,
		onWait: func(attempt int, delay time.Duration, err error) {
			logger.Warnw("Rate limit hit, retrying after delay",
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
		},
	}

	return &ContextTranslator{
		gen:           retry,
		template:      tmpl,
		contextWindow: opts.ContextWindow,
		logger:        logger,
		progress:      opts.Progress,
	}, nil
}

// Translate returns a new slice with translated text and the original
// indices and timestamps, in input order. The first unrecoverable backend
// error aborts the run and no records are returned.
func (t *ContextTranslator) Translate(
	ctx context.Context,
	records []subtitle.Record,
	req Request,
) ([]subtitle.Record, error) {
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, errors.New("target language is required")
	}

	if req.Limit > 0 && req.Limit < len(records) {
		records = records[:req.Limit]
	}

	sourceLang := strings.TrimSpace(req.SourceLanguage)
	switch {
	case sourceLang == "":
		sourceLang = defaultSourceLanguage
	case strings.EqualFold(sourceLang, SourceAuto):
		sourceLang = DetectLanguage(records)
		t.logger.Infow("Detected source language", "language", sourceLang)
	}
	if strings.EqualFold(sourceLang, strings.TrimSpace(req.TargetLanguage)) {
		return nil, fmt.Errorf(
			"%w: %s",
			ErrSameLanguage,
			sourceLang,
		)
	}

	translated := make([]subtitle.Record, 0, len(records))
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if record.IsBlank() {
			translated = append(translated, record)
			t.report(i+1, len(records))
			continue
		}

		text, err := t.translateEntry(ctx, records, i, sourceLang, req.TargetLanguage)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to translate entry %d: %w",
				record.Index,
				err,
			)
		}

		translated = append(translated, record.WithText(text))
		t.report(i+1, len(records))
	}

	return translated, nil
}

func (t *ContextTranslator) translateEntry(
	ctx context.Context,
	records []subtitle.Record,
	i int,
	sourceLang, targetLang string,
) (string, error) {
	filled, err := t.template.Format(map[string]string{
		"context":      t.contextFor(records, i),
		"current_line": records[i].Text,
		"source_lang":  sourceLang,
		"target_lang":  targetLang,
	})
	if err != nil {
		return "", err
	}

	response, err := t.gen.Generate(ctx, filled)
	if err != nil {
		return "", err
	}

	answer := ExtractAnswer(response)
	t.logger.Debugw("Translated entry",
		"index", records[i].Index,
		"source", truncateString(records[i].Text, 80),
		"result", truncateString(answer, 80),
	)
	return answer, nil
}

// texts of up to contextWindow original entries immediately before i
func (t *ContextTranslator) contextFor(records []subtitle.Record, i int) string {
	start := i - t.contextWindow
	if start < 0 {
		start = 0
	}
	texts := make([]string, 0, i-start)
	for _, r := range records[start:i] {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, "\n")
}

func (t *ContextTranslator) report(done, total int) {
	if t.progress != nil {
		t.progress(done, total)
	}
}
