package subtitle

import "strings"

// represents single subtitle entry
//
// Timestamp is kept in the source's own syntax and is never parsed.
type Record struct {
	Index     int
	Timestamp string
	Text      string
}

// reports whether the entry has no visible text
func (r Record) IsBlank() bool {
	return strings.TrimSpace(r.Text) == ""
}

// WithText returns a copy of r carrying new text.
func (r Record) WithText(text string) Record {
	r.Text = text
	return r
}

// PlainText joins the text of every record, skipping indices and timestamps.
func PlainText(records []Record) string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n")
}
