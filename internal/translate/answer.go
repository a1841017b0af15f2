package translate

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// ExtractAnswer strips a leading reasoning block from a model response.
//
// Only a block that opens the response (after whitespace) is removed, so
// captions that legitimately contain the marker text survive. An unterminated
// opening marker is dropped on its own and the rest is kept.
func ExtractAnswer(response string) string {
	trimmed := strings.TrimLeft(response, " \t\r\n")
	if !strings.HasPrefix(trimmed, thinkOpen) {
		return strings.TrimSpace(response)
	}

	rest := trimmed[len(thinkOpen):]
	if end := strings.Index(rest, thinkClose); end >= 0 {
		return strings.TrimSpace(rest[end+len(thinkClose):])
	}
	return strings.TrimSpace(rest)
}
