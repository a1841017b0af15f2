package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the template file or prompt name is missing.
	ErrNotFound = errors.New("prompt not found")
	// ErrMissingPlaceholder is returned when a required placeholder is not
	// declared or not used by the template text.
	ErrMissingPlaceholder = errors.New("prompt is missing a required placeholder")
)

// Template is a prompt with {name} placeholders. Literal braces are written
// as {{ and }}.
type Template struct {
	Name           string
	Text           string
	InputVariables []string
}

// Placeholders returns the distinct placeholder names used in the text.
// Names after a syntax error are not included; see Require.
func (t *Template) Placeholders() []string {
	names, _ := t.placeholders()
	return names
}

func (t *Template) placeholders() ([]string, error) {
	seen := map[string]bool{}
	var names []string
	err := scan(t.Text, func(literal string) {}, func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	sort.Strings(names)
	return names, err
}

// Require checks that the template text is well formed and that every name
// is both declared and used by the template.
func (t *Template) Require(names ...string) error {
	placeholders, err := t.placeholders()
	if err != nil {
		return fmt.Errorf("invalid template %q: %w", t.Name, err)
	}

	declared := map[string]bool{}
	for _, v := range t.InputVariables {
		declared[v] = true
	}
	used := map[string]bool{}
	for _, v := range placeholders {
		used[v] = true
	}

	for _, name := range names {
		if !declared[name] {
			return fmt.Errorf(
				"%w: %q is not declared in input_variables of %q",
				ErrMissingPlaceholder,
				name,
				t.Name,
			)
		}
		if !used[name] {
			return fmt.Errorf(
				"%w: {%s} does not appear in template %q",
				ErrMissingPlaceholder,
				name,
				t.Name,
			)
		}
	}
	return nil
}

// Format substitutes every placeholder. Unknown placeholders are an error.
func (t *Template) Format(values map[string]string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(t.Text))

	var missing string
	err := scan(t.Text, func(literal string) {
		sb.WriteString(literal)
	}, func(name string) {
		value, ok := values[name]
		if !ok && missing == "" {
			missing = name
		}
		sb.WriteString(value)
	})
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", t.Name, err)
	}
	if missing != "" {
		return "", fmt.Errorf("no value for placeholder {%s} in %q", missing, t.Name)
	}
	return sb.String(), nil
}

// walks text, emitting literal runs and placeholder names
func scan(text string, literal func(string), field func(string)) error {
	i := 0
	start := 0
	for i < len(text) {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				literal(text[start:i] + "{")
				i += 2
				start = i
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return fmt.Errorf("unclosed '{' at offset %d", i)
			}
			name := strings.TrimSpace(text[i+1 : i+1+end])
			if name == "" {
				return fmt.Errorf("empty placeholder at offset %d", i)
			}
			literal(text[start:i])
			field(name)
			i += end + 2
			start = i
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				literal(text[start:i] + "}")
				i += 2
				start = i
				continue
			}
			return fmt.Errorf("single '}' at offset %d", i)
		default:
			i++
		}
	}
	literal(text[start:])
	return nil
}
