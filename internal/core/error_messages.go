// Package core provides the table registry and snapshot service.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid table configuration: The table definition cannot be used
//	         Action: Check the definitions file and page size settings
//	         Patterns: "invalid table definition", "invalid table options", "invalid page size"
//
// # Data Errors (DATA001-DATA099)
//
// Errors in the record collection behind a table. These are detected when a
// snapshot is built, never while a page is shown.
//
//	DATA001 - Missing identifier: Some records have no identifier
//	          Action: Make sure every record has an id and a parent id
//	          Patterns: "missing identifier", "missing parent identifier"
//
//	DATA002 - Duplicate identifier: Two records share an identifier
//	          Action: Make identifiers unique in the source data
//	          Patterns: "duplicate identifier"
//
//	DATA003 - Record not found: The selected record is not in this table
//	          Action: Reload the page; the data may have changed
//	          Patterns: "record not found"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Unsupported source file: The data file type is not supported
//	         Action: Use a .json, .yaml, .toml or .csv file
//	         Patterns: "unsupported file extension"
//
//	SRC002 - Unreadable source: The data file could not be read
//	         Action: Check that the file exists and is well formed
//	         Patterns: "read source", "decode source"
//
//	SRC003 - No database: The table needs a database that is not configured
//	         Action: Set DATABASE_URL and restart
//	         Patterns: "no database configured"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB006 - Timeout: Operation timed out
//	        Action: Please try again later
//	        Patterns: "context deadline exceeded", "timeout"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The specified table does not exist
//	         Action: Verify the table name is correct
//	         Patterns: "table not found"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
//	RATE002 - Busy: Too many tables are loading at once
//	          Action: Wait a few seconds and reload the page
//	          Patterns: "too many concurrent loads"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgInvalidConfig = UserMessage{
		Message: "The table definition cannot be used",
		Action:  "Check the definitions file and page size settings",
		Code:    "CFG001",
	}
	msgMissingID = UserMessage{
		Message: "Some records have no identifier",
		Action:  "Make sure every record has an id and a parent id",
		Code:    "DATA001",
	}
	msgUnreadableSource = UserMessage{
		Message: "The data file could not be read",
		Action:  "Check that the file exists and is well formed",
		Code:    "SRC002",
	}
	msgTimeout = UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Configuration (CFG001)
	// =========================================================================
	{pattern: "invalid table definition", msg: msgInvalidConfig},
	{pattern: "invalid table options", msg: msgInvalidConfig},
	{pattern: "invalid page size", msg: msgInvalidConfig},

	// =========================================================================
	// Record collection (DATA001-DATA003)
	// =========================================================================
	{
		pattern: "duplicate identifier",
		msg: UserMessage{
			Message: "Two records share an identifier",
			Action:  "Make identifiers unique in the source data",
			Code:    "DATA002",
		},
	},
	{pattern: "missing identifier", msg: msgMissingID},
	{pattern: "missing parent identifier", msg: msgMissingID},
	{
		pattern: "record not found",
		msg: UserMessage{
			Message: "The selected record is not in this table",
			Action:  "Reload the page; the data may have changed",
			Code:    "DATA003",
		},
	},

	// =========================================================================
	// Sources (SRC001-SRC003)
	// =========================================================================
	{
		pattern: "unsupported file extension",
		msg: UserMessage{
			Message: "The data file type is not supported",
			Action:  "Use a .json, .yaml, .toml or .csv file",
			Code:    "SRC001",
		},
	},
	{pattern: "read source", msg: msgUnreadableSource},
	{pattern: "decode source", msg: msgUnreadableSource},
	{
		pattern: "no database configured",
		msg: UserMessage{
			Message: "The table needs a database that is not configured",
			Action:  "Set DATABASE_URL and restart",
			Code:    "SRC003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},

	// =========================================================================
	// Table Errors (TBL001)
	// =========================================================================
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "Too many tables are loading at once",
			Action:  "Wait a few seconds and reload the page",
			Code:    "RATE002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
//
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
