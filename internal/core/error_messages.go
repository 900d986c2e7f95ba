package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
// Errors related to the uploaded file:
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Upload a smaller file or remove unused columns
//	          Patterns: "file too large"
//
//	FILE002 - Unsupported format: Only CSV and Excel files are accepted
//	          Action: Save the file as .csv or .xlsx
//	          Patterns: "unsupported file format"
//
//	FILE003 - Encoding error: No candidate encoding could decode the file
//	          Action: Save the file as UTF-8
//	          Patterns: "could not decode"
//
//	FILE004 - No file: No file was selected
//	          Action: Please upload a CSV or Excel file to begin your analysis
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file has no data
//	          Action: Upload a file with a header row and data rows
//	          Patterns: "empty file"
//
//	FILE006 - Parse error: The file could not be read as a table
//	          Action: Check for unbalanced quotes or rows with extra fields
//	          Patterns: "invalid csv", "invalid spreadsheet"
//
// # Type Errors (TYPE001-TYPE099)
//
// Errors related to column type conversion:
//
//	TYPE001 - Unknown type: The requested column type is not supported
//	          Action: Choose Numeric, Datetime, Category or String
//	          Patterns: "unknown column type"
//
//	TYPE002 - Conversion failed: A column could not be converted
//	          Action: Pick another type or clean the column's values
//	          Patterns: "column not found", "conversion failed"
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Chart unavailable: The chart cannot be drawn for these columns
//	           Action: Select different columns or another chart type
//	           Patterns: "chart unavailable", "no numerical columns"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: The uploaded file is no longer available
//	         Action: Upload the file again
//	         Patterns: "session not found"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit", "too many concurrent analyses"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller file or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Unsupported file format",
			Action:  "Please upload a CSV or Excel file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "could not decode",
		msg: UserMessage{
			Message: "Could not decode the file with any of the supported encodings",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please upload a CSV or Excel file to begin your analysis",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row and data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check for unbalanced quotes or rows with extra fields",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Re-save the workbook as .xlsx",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Type Errors (TYPE001-TYPE002)
	// =========================================================================
	{
		pattern: "unknown column type",
		msg: UserMessage{
			Message: "Unknown column type",
			Action:  "Choose Numeric, Datetime, Category or String",
			Code:    "TYPE001",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column not found",
			Action:  "Pick a column from the uploaded file",
			Code:    "TYPE002",
		},
	},
	{
		pattern: "conversion failed",
		msg: UserMessage{
			Message: "Column could not be converted",
			Action:  "Pick another type or clean the column's values",
			Code:    "TYPE002",
		},
	},

	// =========================================================================
	// Chart Errors (CHART001)
	// =========================================================================
	{
		pattern: "chart unavailable",
		msg: UserMessage{
			Message: "The chart cannot be drawn for the selected columns",
			Action:  "Select different columns or another chart type",
			Code:    "CHART001",
		},
	},
	{
		pattern: "no numerical columns",
		msg: UserMessage{
			Message: "No numerical columns available",
			Action:  "Convert a column to Numeric or select another chart type",
			Code:    "CHART001",
		},
	},

	// =========================================================================
	// Session Errors (SES001)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Upload the file again",
			Code:    "SES001",
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
		pattern: "too many concurrent analyses",
		msg: UserMessage{
			Message: "The server is busy analysing other files",
			Action:  "Please wait a moment and try again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("read upload: %w", ErrFileTooLarge))
//	// msg.Code == "FILE001"
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

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
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

// NewUserError maps a technical error to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
