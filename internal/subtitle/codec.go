package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var blockSeparator = regexp.MustCompile(`\n{2,}`)

// Parse reads a subtitle file and returns its records in file order.
//
// Blocks with fewer than three lines, or whose first line is not an integer,
// are dropped without error.
func Parse(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("subtitle file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	return ParseBytes(data), nil
}

// ParseBytes parses subtitle content that is already in memory.
func ParseBytes(data []byte) []Record {
	text, _ := Decode(data)
	return parseText(text)
}

func parseText(content string) []Record {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return []Record{}
	}

	blocks := blockSeparator.Split(content, -1)
	records := make([]Record, 0, len(blocks))
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			continue
		}

		records = append(records, Record{
			Index:     index,
			Timestamp: lines[1],
			Text:      strings.Join(lines[2:], "\n"),
		})
	}

	return records
}

// Save writes records to path as UTF-8.
//
// The destination directory must already exist.
func Save(records []Record, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Write(file, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// Write serializes records in order. Invalid UTF-8 in any field is replaced
// with U+FFFD.
func Write(w io.Writer, records []Record) error {
	encoded := transform.NewWriter(w, unicode.UTF8.NewEncoder())
	writer := bufio.NewWriter(encoded)

	for _, r := range records {
		fmt.Fprintf(writer, "%d\n", r.Index)
		fmt.Fprintf(writer, "%s\n", r.Timestamp)
		fmt.Fprintf(writer, "%s\n\n", r.Text)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}
