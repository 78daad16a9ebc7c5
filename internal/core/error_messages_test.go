package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "invalid page size maps to configuration",
			err:         fmt.Errorf("drill: %w: 0 (must be positive)", drill.ErrInvalidPageSize),
			wantCode:    "CFG001",
			wantMessage: "The table definition cannot be used",
		},
		{
			name:        "bad definitions file maps to configuration",
			err:         fmt.Errorf("tables.yaml: %w: no tables declared", ErrInvalidDefinitions),
			wantCode:    "CFG001",
			wantMessage: "The table definition cannot be used",
		},
		{
			name:        "missing identifier maps correctly",
			err:         &drill.DataError{Issues: []drill.RecordIssue{{Index: 2, Field: "id", Problem: "missing identifier field"}}},
			wantCode:    "DATA001",
			wantMessage: "Some records have no identifier",
		},
		{
			name:        "missing parent maps to missing identifier",
			err:         &drill.DataError{Issues: []drill.RecordIssue{{Index: 0, Field: "parent", Problem: "missing parent identifier field"}}},
			wantCode:    "DATA001",
			wantMessage: "Some records have no identifier",
		},
		{
			name:        "duplicate identifier maps correctly",
			err:         errors.New(`table org: drill: invalid records: record 3: duplicate identifier in field (value "7" first seen at record 1) "id"`),
			wantCode:    "DATA002",
			wantMessage: "Two records share an identifier",
		},
		{
			name:        "unknown record maps correctly",
			err:         fmt.Errorf("%w: %q in table org", ErrRecordNotFound, "x"),
			wantCode:    "DATA003",
			wantMessage: "The selected record is not in this table",
		},
		{
			name:        "unsupported file maps correctly",
			err:         errors.New(`unsupported file extension ".csv"`),
			wantCode:    "SRC001",
			wantMessage: "The data file type is not supported",
		},
		{
			name:        "decode failure maps correctly",
			err:         errors.New("decode source data/org.json: unexpected EOF"),
			wantCode:    "SRC002",
			wantMessage: "The data file could not be read",
		},
		{
			name:        "postgres without database maps correctly",
			err:         errors.New("postgres source: no database configured (set DATABASE_URL)"),
			wantCode:    "SRC003",
			wantMessage: "The table needs a database that is not configured",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("query source: dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline maps to timeout",
			err:         fmt.Errorf("table org: %w", context.DeadlineExceeded),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "table not found maps correctly",
			err:         fmt.Errorf("%w: nope", ErrTableNotFound),
			wantCode:    "TBL001",
			wantMessage: "Table not found",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "busy load limiter maps correctly",
			err:         fmt.Errorf("table org: %w", ErrTooManyLoads),
			wantCode:    "RATE002",
			wantMessage: "Too many tables are loading at once",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("TABLE NOT FOUND"),
			wantCode:    "TBL001",
			wantMessage: "Table not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := fmt.Errorf("%w: nope", ErrTableNotFound)
	result := FormatUserError(err)

	expected := "Table not found (Code: TBL001). Verify the table name is correct"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("duplicate identifier"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("table org: %w", ErrTableNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Table not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrTableNotFound) {
			t.Error("Unwrap() should return original error")
		}
	})
}
