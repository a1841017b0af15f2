package translate

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

// SourceAuto asks Translate to detect the source language.
const SourceAuto = "auto"

const (
	defaultSourceLanguage = "English"
	maxDetectSample       = 4000
)

// DetectLanguage guesses the language of the records' text by majority
// vote over the entries whose own detection is reliable, and returns its
// English name. Ties go to the language seen first. When no single entry
// is reliable the joined text is detected as a whole; if that is unreliable
// too, "English" is returned.
func DetectLanguage(records []subtitle.Record) string {
	votes := map[whatlanggo.Lang]int{}
	var order []whatlanggo.Lang
	var sample strings.Builder

	for _, r := range records {
		if r.IsBlank() {
			continue
		}
		if sample.Len() < maxDetectSample {
			sample.WriteString(r.Text)
			sample.WriteString("\n")
		}

		info := whatlanggo.Detect(r.Text)
		if !info.IsReliable() {
			continue
		}
		if votes[info.Lang] == 0 {
			order = append(order, info.Lang)
		}
		votes[info.Lang]++
	}

	if len(order) > 0 {
		best := order[0]
		for _, lang := range order[1:] {
			if votes[lang] > votes[best] {
				best = lang
			}
		}
		return best.String()
	}

	if sample.Len() == 0 {
		return defaultSourceLanguage
	}
	info := whatlanggo.Detect(sample.String())
	if !info.IsReliable() {
		return defaultSourceLanguage
	}
	return info.Lang.String()
}
