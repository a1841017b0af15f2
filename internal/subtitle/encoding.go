package subtitle

import (
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// detections below this confidence fall back to UTF-8
const minDetectConfidence = 50

// Decode converts raw subtitle bytes to text.
//
// A byte-order mark always wins. Valid UTF-8 is used as is; anything else is
// run through charset detection, and inconclusive results decode as UTF-8
// with invalid sequences replaced by U+FFFD.
func Decode(data []byte) (string, string) {
	enc, name := detectEncoding(data)

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		out, _, _ = transform.Bytes(
			unicode.BOMOverride(unicode.UTF8.NewDecoder()),
			data,
		)
		name = "UTF-8"
	}
	return string(out), name
}

func detectEncoding(data []byte) (encoding.Encoding, string) {
	if utf8.Valid(data) {
		return unicode.UTF8, "UTF-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minDetectConfidence {
		return unicode.UTF8, "UTF-8"
	}

	enc, err := htmlindex.Get(result.Charset)
	if err != nil || enc == nil {
		return unicode.UTF8, "UTF-8"
	}
	return enc, result.Charset
}
