package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses entity definitions from YAML bytes. Several entities may be
// declared in one file, separated by "---".
func Parse(data []byte) ([]*Entity, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var entities []*Entity
	for {
		var e Entity
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if e.Name == "" && len(e.Fields) == 0 {
			continue // empty document
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validate entity %q: %w", e.Name, err)
		}
		e.reindex()
		entities = append(entities, &e)
	}

	return entities, nil
}

// ParseFile parses entity definitions from a YAML file.
func ParseFile(p string) ([]*Entity, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", p, err)
	}
	return Parse(data)
}

// ParseDir parses all YAML files in a directory, including subdirectories.
func ParseDir(dir string) ([]*Entity, error) {
	return ParseFS(os.DirFS(dir), ".")
}

// ParseFS parses all YAML files below dir in fsys. Used with embed.FS.
func ParseFS(fsys fs.FS, dir string) ([]*Entity, error) {
	var entities []*Entity

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		p := path.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseFS(fsys, p)
			if err != nil {
				return nil, err
			}
			entities = append(entities, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", p, err)
		}
		parsed, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		entities = append(entities, parsed...)
	}

	return entities, nil
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
}

// isValidIdentifier checks if a string is a valid identifier.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
