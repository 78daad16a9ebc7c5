package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// decodeCSV reads a header row followed by data rows. Each data row becomes
// a record keyed by the cleaned header names; blank lines are skipped.
// Numeric cells are converted by parseCell.
func decodeCSV(r io.Reader) ([]drill.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := cleanCell(h)
		if name == "" {
			return nil, fmt.Errorf("csv header: column %d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("csv header: column %q appears twice", name)
		}
		seen[name] = true
		names[i] = name
	}

	var records []drill.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row: %w", err)
		}

		rec := make(drill.Record, len(names))
		for i, name := range names {
			rec[name] = parseCell(cleanCell(row[i]))
		}
		records = append(records, rec)
	}
	return records, nil
}

var decimalRegex = regexp.MustCompile(`^[+-]?(0|[1-9]\d*)\.\d+$`)

// parseCell turns canonical integers and decimals into numbers so they sort
// numerically. Anything else, including zero-padded codes like "007", stays
// text.
func parseCell(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return n
	}
	if decimalRegex.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// cleanCell strips the artifacts spreadsheet exports leave around values:
// surrounding whitespace, an Excel formula wrapper (="...") and quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
