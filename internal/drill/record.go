package drill

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one row of hierarchical data. Field names for the identifier and
// the parent identifier are configured through Options.
type Record map[string]any

// ErrInvalidRecords is the sentinel wrapped by *DataError.
var ErrInvalidRecords = errors.New("invalid records")

// Key returns the canonical string form of an identifier value.
// Identifiers are compared by this form, so "7", int64(7) and float64(7)
// name the same node. The second result is false for nil.
func Key(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return formatFloat(float64(val)), true
	case float64:
		return formatFloat(val), true
	case bool:
		return strconv.FormatBool(val), true
	case [16]byte:
		// pgx decodes uuid columns to [16]byte
		return uuid.UUID(val).String(), true
	case uuid.UUID:
		return val.String(), true
	case json.Number:
		return numberKey(val), true
	case time.Time:
		return val.Format(time.RFC3339), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// numberKey canonicalizes a decoded JSON number. Integers keep every digit;
// anything else takes the float64 form, so 1.0 and 1 meet.
func numberKey(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		// an integer beyond int64
		return s
	}
	if f, err := n.Float64(); err == nil {
		return formatFloat(f)
	}
	return s
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatValue renders a cell value as plain text. Nil renders as "".
func FormatValue(v any) string {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	}
	s, _ := Key(v)
	return s
}

// field returns the canonical key stored under name.
func (r Record) field(name string) (string, bool) {
	v, ok := r[name]
	if !ok {
		return "", false
	}
	return Key(v)
}

// RecordIssue describes one malformed record.
type RecordIssue struct {
	Index   int    // Position in the collection
	Field   string // Offending field name
	Problem string // What is wrong
}

func (i RecordIssue) String() string {
	return fmt.Sprintf("record %d: %s %q", i.Index, i.Problem, i.Field)
}

// DataError reports every malformed record found while loading a collection.
type DataError struct {
	Issues []RecordIssue
}

// maxReportedIssues caps how many issues Error() spells out.
const maxReportedIssues = 5

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidRecords.Error())
	b.WriteString(": ")
	for i, issue := range e.Issues {
		if i == maxReportedIssues {
			fmt.Fprintf(&b, "; and %d more", len(e.Issues)-maxReportedIssues)
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(issue.String())
	}
	return b.String()
}

func (e *DataError) Unwrap() error {
	return ErrInvalidRecords
}

const (
	problemMissingID     = "missing identifier field"
	problemMissingParent = "missing parent identifier field"
	problemDuplicateID   = "duplicate identifier in field"
)

// ValidateRecords checks every record for an identifier, a parent identifier
// and identifier uniqueness. It returns a *DataError listing all problems, or
// nil when the collection is well formed.
func ValidateRecords(records []Record, opts Options) error {
	var issues []RecordIssue
	seen := make(map[string]int, len(records))

	for i, r := range records {
		id, ok := r.field(opts.IdentifierField)
		if !ok {
			issues = append(issues, RecordIssue{Index: i, Field: opts.IdentifierField, Problem: problemMissingID})
		} else if first, dup := seen[id]; dup {
			issues = append(issues, RecordIssue{
				Index:   i,
				Field:   opts.IdentifierField,
				Problem: fmt.Sprintf("%s (value %q first seen at record %d)", problemDuplicateID, id, first),
			})
		} else {
			seen[id] = i
		}

		if _, ok := r.field(opts.ParentIdentifierField); !ok {
			issues = append(issues, RecordIssue{Index: i, Field: opts.ParentIdentifierField, Problem: problemMissingParent})
		}
	}

	if len(issues) > 0 {
		return &DataError{Issues: issues}
	}
	return nil
}
