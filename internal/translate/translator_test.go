package translate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/subtrans/internal/prompt"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

// generator stub that records prompts and answers with a scripted function
type stubGenerator struct {
	prompts []string
	respond func(prompt string, call int) (string, error)
}

func (s *stubGenerator) Generate(
	ctx context.Context,
	prompt string,
) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.respond(prompt, len(s.prompts))
}

func pipeTemplate() *prompt.Template {
	return &prompt.Template{
		Name:           "pipe",
		Text:           "{context}|{current_line}|{source_lang}|{target_lang}",
		InputVariables: RequiredPlaceholders,
	}
}

type promptParts struct {
	context, line, source, target string
}

func splitPrompt(t *testing.T, p string) promptParts {
	t.Helper()
	parts := strings.Split(p, "|")
	if len(parts) != 4 {
		t.Fatalf("unexpected prompt %q", p)
	}
	return promptParts{parts[0], parts[1], parts[2], parts[3]}
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func reversingGenerator(t *testing.T) *stubGenerator {
	return &stubGenerator{
		respond: func(p string, call int) (string, error) {
			return "<think>t</think>" + reverse(splitPrompt(t, p).line), nil
		},
	}
}

func newTestTranslator(
	t *testing.T,
	gen Generator,
	opts Options,
) *ContextTranslator {
	t.Helper()
	tr, err := NewContextTranslator(gen, pipeTemplate(), opts)
	if err != nil {
		t.Fatalf("NewContextTranslator error: %v", err)
	}
	tr.gen.(*retryingGenerator).sleep = func(context.Context, time.Duration) error {
		return nil
	}
	return tr
}

func makeRecords(n int) []subtitle.Record {
	records := make([]subtitle.Record, n)
	for i := range records {
		records[i] = subtitle.Record{
			Index:     i + 1,
			Timestamp: "ts",
			Text:      "line" + string(rune('a'+i)),
		}
	}
	return records
}

func TestTranslateReversedScenario(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.srt")
	output := filepath.Join(dir, "out.srt")
	content := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n" +
		"2\n00:00:02,500 --> 00:00:03,000\nWorld\n\n"
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	records, err := subtitle.Parse(input)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	tr := newTestTranslator(t, reversingGenerator(t), Options{ContextWindow: 10})
	translated, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "French",
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if err := subtitle.Save(translated, output); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := "1\n00:00:01,000 --> 00:00:02,000\nolleH\n\n" +
		"2\n00:00:02,500 --> 00:00:03,000\ndlroW\n\n"
	if string(data) != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", string(data), want)
	}
}

func TestTranslateContextUsesOriginalEntries(t *testing.T) {
	records := makeRecords(14)
	gen := reversingGenerator(t)
	tr := newTestTranslator(t, gen, Options{ContextWindow: 10})

	if _, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "German",
	}); err != nil {
		t.Fatalf("Translate error: %v", err)
	}

	if len(gen.prompts) != len(records) {
		t.Fatalf("expected %d calls, got %d", len(records), len(gen.prompts))
	}
	for i, p := range gen.prompts {
		start := i - 10
		if start < 0 {
			start = 0
		}
		var want []string
		for _, r := range records[start:i] {
			want = append(want, r.Text)
		}
		parts := splitPrompt(t, p)
		if parts.context != strings.Join(want, "\n") {
			t.Errorf("entry %d: context %q, want %q", i, parts.context, strings.Join(want, "\n"))
		}
		if parts.line != records[i].Text {
			t.Errorf("entry %d: current line %q", i, parts.line)
		}
		if parts.source != "English" || parts.target != "German" {
			t.Errorf("entry %d: languages %q -> %q", i, parts.source, parts.target)
		}
	}
}

func TestTranslateSkipsBlankEntries(t *testing.T) {
	records := []subtitle.Record{
		{Index: 1, Timestamp: "a", Text: "Hello"},
		{Index: 2, Timestamp: "b", Text: "   \n\t"},
		{Index: 3, Timestamp: "c", Text: ""},
		{Index: 4, Timestamp: "d", Text: "World"},
	}
	gen := reversingGenerator(t)
	tr := newTestTranslator(t, gen, Options{ContextWindow: 10})

	translated, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "Spanish",
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}

	if len(gen.prompts) != 2 {
		t.Errorf("expected 2 backend calls, got %d", len(gen.prompts))
	}
	if translated[1] != records[1] || translated[2] != records[2] {
		t.Errorf("blank entries changed: %+v", translated[1:3])
	}
	if translated[3].Text != "dlroW" {
		t.Errorf("expected 'dlroW', got %q", translated[3].Text)
	}
}

func TestTranslatePreservesOrderAndIdentity(t *testing.T) {
	records := []subtitle.Record{
		{Index: 9, Timestamp: "t9", Text: "nine"},
		{Index: 2, Timestamp: "t2", Text: "two"},
		{Index: 2, Timestamp: "t2b", Text: "two again"},
	}
	tr := newTestTranslator(t, reversingGenerator(t), Options{ContextWindow: 10})

	translated, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "Italian",
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(translated) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(translated))
	}
	for i := range records {
		if translated[i].Index != records[i].Index ||
			translated[i].Timestamp != records[i].Timestamp {
			t.Errorf("record %d identity changed: %+v", i, translated[i])
		}
		if translated[i].Text != reverse(records[i].Text) {
			t.Errorf("record %d: unexpected text %q", i, translated[i].Text)
		}
	}
	if records[0].Text != "nine" {
		t.Error("input records were modified")
	}
}

func TestTranslateLimit(t *testing.T) {
	records := makeRecords(5)
	gen := reversingGenerator(t)
	tr := newTestTranslator(t, gen, Options{ContextWindow: 10})

	translated, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "French",
		Limit:          2,
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(translated) != 2 || len(gen.prompts) != 2 {
		t.Errorf("expected 2 results and calls, got %d and %d", len(translated), len(gen.prompts))
	}

	translated, err = tr.Translate(context.Background(), records, Request{
		TargetLanguage: "French",
		Limit:          50,
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(translated) != 5 {
		t.Errorf("expected 5 results, got %d", len(translated))
	}
}

func TestTranslateSmallContextWindow(t *testing.T) {
	records := makeRecords(4)
	gen := reversingGenerator(t)
	tr := newTestTranslator(t, gen, Options{ContextWindow: 1})

	if _, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "French",
	}); err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if got := splitPrompt(t, gen.prompts[3]).context; got != records[2].Text {
		t.Errorf("expected context %q, got %q", records[2].Text, got)
	}
	if got := splitPrompt(t, gen.prompts[0]).context; got != "" {
		t.Errorf("expected empty context for first entry, got %q", got)
	}
}

func TestTranslateProgress(t *testing.T) {
	records := makeRecords(3)
	records[1].Text = " "
	var calls [][2]int
	tr := newTestTranslator(t, reversingGenerator(t), Options{
		ContextWindow: 10,
		Progress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	})

	if _, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "French",
	}); err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("expected %d progress calls, got %d", len(want), len(calls))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d: got %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestTranslateRetriesRateLimit(t *testing.T) {
	gen := &stubGenerator{
		respond: func(p string, call int) (string, error) {
			if call <= 2 {
				return "", errors.New("HTTP 429 Too Many Requests")
			}
			return "Bonjour", nil
		},
	}
	tr := newTestTranslator(t, gen, Options{
		ContextWindow: 10,
		Retry:         RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 4 * time.Second},
	})
	var delays []time.Duration
	tr.gen.(*retryingGenerator).sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	translated, err := tr.Translate(context.Background(), makeRecords(1), Request{
		TargetLanguage: "French",
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if translated[0].Text != "Bonjour" {
		t.Errorf("expected 'Bonjour', got %q", translated[0].Text)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Errorf("unexpected backoff delays %v", delays)
	}
}

func TestTranslateRateLimitExceeded(t *testing.T) {
	gen := &stubGenerator{
		respond: func(p string, call int) (string, error) {
			return "", errors.New("Rate limit reached for model")
		},
	}
	tr := newTestTranslator(t, gen, Options{
		ContextWindow: 10,
		Retry:         RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})

	translated, err := tr.Translate(context.Background(), makeRecords(2), Request{
		TargetLanguage: "French",
	})
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
	}
	if translated != nil {
		t.Errorf("expected no partial output, got %+v", translated)
	}
	if len(gen.prompts) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(gen.prompts))
	}
}

func TestTranslateAbortsOnBackendError(t *testing.T) {
	boom := errors.New("model not found")
	gen := &stubGenerator{
		respond: func(p string, call int) (string, error) {
			if call == 2 {
				return "", boom
			}
			return "ok", nil
		},
	}
	tr := newTestTranslator(t, gen, Options{ContextWindow: 10})

	translated, err := tr.Translate(context.Background(), makeRecords(4), Request{
		TargetLanguage: "French",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if translated != nil {
		t.Errorf("expected nil output, got %+v", translated)
	}
	if len(gen.prompts) != 2 {
		t.Errorf("expected the run to stop after 2 calls, got %d", len(gen.prompts))
	}
	if !strings.Contains(err.Error(), "entry 2") {
		t.Errorf("error should name the failing entry: %v", err)
	}
}

func TestTranslateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := newTestTranslator(t, reversingGenerator(t), Options{ContextWindow: 10})

	if _, err := tr.Translate(ctx, makeRecords(2), Request{
		TargetLanguage: "French",
	}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTranslateRequiresTargetLanguage(t *testing.T) {
	tr := newTestTranslator(t, reversingGenerator(t), Options{})
	if _, err := tr.Translate(context.Background(), makeRecords(1), Request{}); err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestNewContextTranslatorValidatesTemplate(t *testing.T) {
	tmpl := &prompt.Template{
		Name:           "incomplete",
		Text:           "{context} {current_line} {target_lang}",
		InputVariables: []string{"context", "current_line", "target_lang"},
	}
	_, err := NewContextTranslator(reversingGenerator(t), tmpl, Options{})
	if !errors.Is(err, prompt.ErrMissingPlaceholder) {
		t.Errorf("expected ErrMissingPlaceholder, got %v", err)
	}

	if _, err := NewContextTranslator(reversingGenerator(t), pipeTemplate(), Options{
		ContextWindow: -1,
	}); err == nil {
		t.Error("expected error for negative context window")
	}
}

func TestTranslateWithBuiltinPrompt(t *testing.T) {
	tmpl, err := prompt.Load("", prompt.DefaultName)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	gen := &stubGenerator{
		respond: func(p string, call int) (string, error) {
			return "\n<think>\nreasoning\n</think>\n\nBonjour le monde\n", nil
		},
	}
	tr, err := NewContextTranslator(gen, tmpl, Options{ContextWindow: 10})
	if err != nil {
		t.Fatalf("NewContextTranslator error: %v", err)
	}

	translated, err := tr.Translate(context.Background(), []subtitle.Record{
		{Index: 1, Timestamp: "t", Text: "Hello world"},
	}, Request{TargetLanguage: "French", SourceLanguage: "English"})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if translated[0].Text != "Bonjour le monde" {
		t.Errorf("unexpected text %q", translated[0].Text)
	}
	if !strings.Contains(gen.prompts[0], "Hello world") ||
		!strings.Contains(gen.prompts[0], "from English to French") {
		t.Errorf("prompt not filled: %q", gen.prompts[0])
	}
}

func TestNewContextTranslatorRejectsBadTemplateSyntax(t *testing.T) {
	tmpl := &prompt.Template{
		Name:           "stray-brace",
		Text:           "{context}|{current_line}|{source_lang}|{target_lang} }",
		InputVariables: RequiredPlaceholders,
	}
	if _, err := NewContextTranslator(reversingGenerator(t), tmpl, Options{}); err == nil {
		t.Error("expected error for a stray closing brace")
	}
}

func TestTranslateRejectsSameLanguage(t *testing.T) {
	gen := reversingGenerator(t)
	tr := newTestTranslator(t, gen, Options{})

	_, err := tr.Translate(context.Background(), makeRecords(2), Request{
		TargetLanguage: "english",
	})
	if !errors.Is(err, ErrSameLanguage) {
		t.Errorf("expected ErrSameLanguage, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("expected no backend calls, got %d", len(gen.prompts))
	}
}

func TestTranslateRejectsDetectedSameLanguage(t *testing.T) {
	gen := reversingGenerator(t)
	tr := newTestTranslator(t, gen, Options{})
	records := []subtitle.Record{
		{Index: 1, Timestamp: "ts", Text: "Je ne sais pas pourquoi tu es encore ici avec nous ce soir."},
		{Index: 2, Timestamp: "ts", Text: "Nous devons partir maintenant avant que la pluie ne commence."},
	}

	_, err := tr.Translate(context.Background(), records, Request{
		TargetLanguage: "French",
		SourceLanguage: SourceAuto,
	})
	if !errors.Is(err, ErrSameLanguage) {
		t.Errorf("expected ErrSameLanguage, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("expected no backend calls, got %d", len(gen.prompts))
	}
}
