package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/drilltable/internal/source"
)

// ErrInvalidDefinitions marks a definitions file that cannot be used.
var ErrInvalidDefinitions = errors.New("invalid table definitions")

// definitionsFile is the on-disk layout of a definitions file.
type definitionsFile struct {
	Tables []tableSpec `yaml:"tables" toml:"tables"`
}

type tableSpec struct {
	Key             string       `yaml:"key" toml:"key"`
	Label           string       `yaml:"label" toml:"label"`
	Group           string       `yaml:"group" toml:"group"`
	Description     string       `yaml:"description" toml:"description"`
	Source          source.Spec  `yaml:"source" toml:"source"`
	Fields          FieldNames   `yaml:"fields" toml:"fields"`
	Root            string       `yaml:"root" toml:"root"`
	PageSize        int          `yaml:"page_size" toml:"page_size"`
	PageSizeOptions []int        `yaml:"page_size_options" toml:"page_size_options"`
	Columns         []ColumnSpec `yaml:"columns" toml:"columns"`
}

// LoadDefinitions reads table definitions from a .yaml, .yml or .toml file.
// Relative file source paths are resolved against the file's directory.
func LoadDefinitions(path string) ([]TableDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}

	defs, err := DecodeDefinitions(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range defs {
		src := &defs[i].Source
		if isFileSource(src.Kind) && src.Path != "" && !filepath.IsAbs(src.Path) {
			src.Path = filepath.Join(dir, src.Path)
		}
	}
	return defs, nil
}

// DecodeDefinitions parses definitions in the format named by ext.
func DecodeDefinitions(ext string, data []byte) ([]TableDefinition, error) {
	var file definitionsFile

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinitions, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &file)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinitions, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidDefinitions, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrInvalidDefinitions, ext)
	}

	return file.definitions()
}

func (f definitionsFile) definitions() ([]TableDefinition, error) {
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("%w: no tables declared", ErrInvalidDefinitions)
	}

	var problems []string
	seen := make(map[string]bool)
	defs := make([]TableDefinition, 0, len(f.Tables))

	for i, t := range f.Tables {
		where := fmt.Sprintf("table %d", i)
		if t.Key != "" {
			where = fmt.Sprintf("table %q", t.Key)
		}

		switch {
		case t.Key == "":
			problems = append(problems, where+": key is required")
		case seen[t.Key]:
			problems = append(problems, where+": duplicate key")
		}
		seen[t.Key] = true

		if len(t.Columns) == 0 {
			problems = append(problems, where+": at least one column is required")
		}
		if p := checkColumns(t.Columns); p != "" {
			problems = append(problems, where+": "+p)
		}
		if t.PageSize < 0 {
			problems = append(problems, fmt.Sprintf("%s: page_size %d must be positive", where, t.PageSize))
		}
		if !isFileSource(t.Source.Kind) && normalizeKind(t.Source.Kind) != source.KindPostgres {
			problems = append(problems, fmt.Sprintf("%s: unknown source kind %q", where, t.Source.Kind))
		}

		defs = append(defs, TableDefinition{
			Info: TableInfo{
				Key:         t.Key,
				Group:       t.Group,
				Label:       t.Label,
				Description: t.Description,
			},
			Source:          t.Source,
			Fields:          t.Fields,
			RootSentinel:    t.Root,
			PageSize:        t.PageSize,
			PageSizeOptions: t.PageSizeOptions,
			Columns:         t.Columns,
		})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDefinitions, strings.Join(problems, "; "))
	}
	return defs, nil
}

// checkColumns reports the first malformed column in specs.
func checkColumns(specs []ColumnSpec) string {
	for _, c := range specs {
		if len(c.Columns) > 0 {
			if c.Field != "" {
				return fmt.Sprintf("group column %q cannot have a field", c.Header)
			}
			if p := checkColumns(c.Columns); p != "" {
				return p
			}
			continue
		}
		if c.Field == "" {
			return fmt.Sprintf("column %q needs a field", c.Header)
		}
	}
	return ""
}

func normalizeKind(k source.Kind) source.Kind {
	return source.Kind(strings.ToLower(string(k)))
}

func isFileSource(k source.Kind) bool {
	return k == "" || normalizeKind(k) == source.KindFile
}
