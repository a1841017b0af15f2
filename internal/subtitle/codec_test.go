package subtitle

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestParseSRTFile(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	records, err := Parse(writeTemp(t, "test.srt", content))
	if err != nil {
		t.Fatalf("failed to parse SRT file: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Index != 1 {
		t.Errorf("record 0: expected index 1, got %d", records[0].Index)
	}
	if records[0].Timestamp != "00:00:01,000 --> 00:00:04,000" {
		t.Errorf("record 0: unexpected timestamp %q", records[0].Timestamp)
	}
	if records[0].Text != "Hello, world!" {
		t.Errorf("record 0: expected 'Hello, world!', got %q", records[0].Text)
	}

	expectedText := "This is a test.\nWith multiple lines."
	if records[1].Text != expectedText {
		t.Errorf("record 1: expected %q, got %q", expectedText, records[1].Text)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.srt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestParseDropsMalformedBlocks(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nKept\n\n" +
		"2\n00:00:02,000 --> 00:00:03,000\n\n" +
		"abc\n00:00:03,000 --> 00:00:04,000\nNon-numeric index\n\n" +
		"4\n00:00:04,000 --> 00:00:05,000\nAlso kept\n"

	records := ParseBytes([]byte(content))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Text != "Kept" || records[1].Text != "Also kept" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestParseKeepsSourceOrderAndIndices(t *testing.T) {
	content := "7\nT7\nseven\n\n3\nT3\nthree\n\n3\nT3b\nthree again\n"

	records := ParseBytes([]byte(content))
	want := []Record{
		{Index: 7, Timestamp: "T7", Text: "seven"},
		{Index: 3, Timestamp: "T3", Text: "three"},
		{Index: 3, Timestamp: "T3b", Text: "three again"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d: expected %+v, got %+v", i, want[i], records[i])
		}
	}
}

func TestParseHandlesCRLFAndExtraBlankLines(t *testing.T) {
	content := "\r\n\r\n1\r\n00:00:01,000 --> 00:00:02,000\r\nHello\r\n\r\n\r\n\r\n" +
		"2\r\n00:00:02,000 --> 00:00:03,000\r\nWorld\r\n"

	records := ParseBytes([]byte(content))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Timestamp != "00:00:01,000 --> 00:00:02,000" {
		t.Errorf("timestamp kept a carriage return: %q", records[0].Timestamp)
	}
	if records[1].Text != "World" {
		t.Errorf("expected 'World', got %q", records[1].Text)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if records := ParseBytes(nil); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if records := ParseBytes([]byte("\n\n  \n")); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	records := []Record{
		{Index: 1, Timestamp: "00:00:01,000 --> 00:00:02,000", Text: "Hello"},
		{Index: 5, Timestamp: "00:00:02,500 --> 00:00:03,000", Text: "Two\nlines"},
		{Index: 2, Timestamp: "whatever syntax", Text: "こんにちは"},
	}

	path := filepath.Join(t.TempDir(), "out.srt")
	if err := Save(records, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n" +
		"5\n00:00:02,500 --> 00:00:03,000\nTwo\nlines\n\n" +
		"2\nwhatever syntax\nこんにちは\n\n"
	if string(data) != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", string(data), want)
	}

	parsed, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(parsed))
	}
	for i := range records {
		if parsed[i] != records[i] {
			t.Errorf("record %d: expected %+v, got %+v", i, records[i], parsed[i])
		}
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.srt")
	if err := Save([]Record{{Index: 1, Timestamp: "t", Text: "x"}}, path); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWriteReplacesInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	records := []Record{{Index: 1, Timestamp: "t", Text: "bad \xff byte"}}
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !utf8.Valid(buf.Bytes()) {
		t.Errorf("output is not valid UTF-8: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "bad \ufffd byte") {
		t.Errorf("expected replacement character, got %q", buf.String())
	}
}

func TestParseUTF16WithBOM(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n"
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).
		NewEncoder().
		String(content)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	records, err := Parse(writeTemp(t, "utf16.srt", encoded))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 1 || records[0].Text != "Hello" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestParseStripsUTF8BOM(t *testing.T) {
	records := ParseBytes([]byte("\ufeff1\nT\nHello\n"))
	if len(records) != 1 || records[0].Index != 1 {
		t.Errorf("expected BOM to be stripped, got %+v", records)
	}
}

func TestDecodeNonUTF8NeverFails(t *testing.T) {
	data := []byte("1\n00:00:01,000 --> 00:00:02,000\nCaf\xe9 cr\xe8me br\xfbl\xe9e\n")

	text, _ := Decode(data)
	if !utf8.ValidString(text) {
		t.Errorf("decoded text is not valid UTF-8: %q", text)
	}

	records := ParseBytes(data)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !strings.HasPrefix(records[0].Text, "Caf") {
		t.Errorf("unexpected text %q", records[0].Text)
	}
}

func TestPlainText(t *testing.T) {
	records := []Record{
		{Index: 1, Timestamp: "a", Text: "one"},
		{Index: 2, Timestamp: "b", Text: "two\nlines"},
	}
	if got := PlainText(records); got != "one\ntwo\nlines" {
		t.Errorf("unexpected plain text %q", got)
	}
}
