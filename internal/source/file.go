package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// File loads records from a JSON, YAML, TOML or CSV file, chosen by extension.
//
// JSON and YAML files hold a top-level list of objects. TOML has no
// top-level arrays, so TOML files hold an array of tables named "records":
//
//	[[records]]
//	id = "root"
//	parent = "-1"
//
// CSV files start with a header row. Canonical numbers become numbers and
// every other cell stays a string.
// A leading byte order mark is skipped and invalid UTF-8 is replaced in
// every format.
type File struct {
	Path string
}

func (f File) Describe() string {
	return "file:" + f.Path
}

// Load reads and decodes the file.
func (f File) Load(ctx context.Context) ([]drill.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", f.Path, err)
	}
	defer fh.Close()

	records, err := Decode(filepath.Ext(f.Path), fh)
	if err != nil {
		return nil, fmt.Errorf("decode source %s: %w", f.Path, err)
	}
	return records, nil
}

// Decode parses r in the format named by ext (".json", ".yaml", ".yml",
// ".toml", ".csv").
func Decode(ext string, r io.Reader) ([]drill.Record, error) {
	r = cleanReader(r)

	var raw []map[string]any
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(r)
		// UseNumber keeps integer identifiers above 2^53 exact.
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

	case ".toml":
		var doc struct {
			Records []map[string]any `toml:"records"`
		}
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
		raw = doc.Records

	case ".csv":
		return decodeCSV(r)

	default:
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}

	records := make([]drill.Record, len(raw))
	for i, m := range raw {
		records[i] = drill.Record(m)
	}
	return records, nil
}
