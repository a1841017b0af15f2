package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultName is the prompt used for subtitle translation.
const DefaultName = "subtitle_translator"

//go:embed prompts/*.yaml
var builtin embed.FS

type entry struct {
	Template       string   `yaml:"template"`
	InputVariables []string `yaml:"input_variables"`
}

// Load reads <name>.yaml from dir. An empty dir selects the built-in prompts.
func Load(dir, name string) (*Template, error) {
	if dir == "" {
		sub, err := fs.Sub(builtin, "prompts")
		if err != nil {
			return nil, err
		}
		return LoadFS(sub, name)
	}
	return LoadFS(os.DirFS(dir), name)
}

// LoadFS reads <name>.yaml from fsys. The file maps the prompt name to its
// template text and declared input variables.
func LoadFS(fsys fs.FS, name string) (*Template, error) {
	fileName := name + ".yaml"

	data, err := fs.ReadFile(fsys, fileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, fileName)
		}
		return nil, fmt.Errorf("failed to read prompt file %s: %w", fileName, err)
	}

	var entries map[string]entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", fileName, err)
	}

	e, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, fileName)
	}
	if e.Template == "" {
		return nil, fmt.Errorf("prompt %q in %s has an empty template", name, fileName)
	}

	return &Template{
		Name:           name,
		Text:           e.Template,
		InputVariables: e.InputVariables,
	}, nil
}
