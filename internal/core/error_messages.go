// Package core provides the business logic for bulk product imports.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Batch-level failures (the whole request is rejected) reach clients through
// these messages. Row-level validation and commit errors are reported per row
// and are not mapped.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A product with this SKU already exists
//	        Patterns: "duplicate key", "sku already exists"
//
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Patterns: "unique constraint", "violates unique"
//
//	DB003 - Foreign key: Referenced category does not exist
//	        Patterns: "foreign key constraint", "violates foreign key", "category not found"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
//	DB008 - Setup failed: Catalog data could not be loaded
//	        Patterns: "load categories", "load products"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Too many imports in progress
//	         Patterns: "too many imports"
//
//	IMP002 - Batch too large: More rows than one import accepts
//	         Patterns: "too many rows"
//
//	IMP003 - Import interrupted: The import stopped part way through
//	         Patterns: "import stopped"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid body: Request body is not valid JSON
//	         Patterns: "invalid request body"
//
//	REQ002 - Missing rows: Request has no rows array
//	         Patterns: "rows are required"
//
//	REQ003 - Body too large: Request body exceeds the size limit
//	         Patterns: "request body too large"
//
//	REQ004 - Request cancelled
//	         Patterns: "context canceled"
//
//	REQ005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid CSV             Patterns: "invalid csv"
//	FILE003 - Missing columns         Patterns: "missing required column"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "empty file"
//
// # Access Errors
//
//	AUTH001 - Unauthorized            Patterns: "invalid api key"
//	RATE001 - Rate limited            Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs (by request_id) for the original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.
package core

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// Import
	{"too many imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{"too many rows", UserMessage{
		Message: "The import has more rows than allowed",
		Action:  "Split the file into smaller batches",
		Code:    "IMP002",
	}},
	{"import stopped", UserMessage{
		Message: "The import stopped before all rows were processed",
		Action:  "Export the catalog to check which rows were applied, then import the rest",
		Code:    "IMP003",
	}},

	// Request
	{"invalid request body", UserMessage{
		Message: "Invalid request body. Expected array of rows.",
		Action:  "Send a JSON object with a rows array",
		Code:    "REQ001",
	}},
	{"rows are required", UserMessage{
		Message: "Invalid request body. Expected array of rows.",
		Action:  "Send a JSON object with a rows array",
		Code:    "REQ002",
	}},
	{"request body too large", UserMessage{
		Message: "Request body exceeds the size limit",
		Action:  "Split the import into smaller batches",
		Code:    "REQ003",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ004",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller batch or try again later",
		Code:    "REQ005",
	}},

	// Files
	{"file too large", UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure file is comma-separated with consistent columns",
		Code:    "FILE002",
	}},
	{"missing required column", UserMessage{
		Message: "Required column is missing from CSV",
		Action:  "Download the template and compare the header row",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file has no product rows",
		Action:  "Please upload a CSV file with data rows",
		Code:    "FILE005",
	}},

	// Database
	{"load categories", UserMessage{
		Message: "Catalog data could not be loaded",
		Action:  "Please try again in a few moments",
		Code:    "DB008",
	}},
	{"load products", UserMessage{
		Message: "Catalog data could not be loaded",
		Action:  "Please try again in a few moments",
		Code:    "DB008",
	}},
	{"duplicate key", UserMessage{
		Message: "A product with this SKU already exists",
		Action:  "Enable update mode or remove the row",
		Code:    "DB001",
	}},
	{"sku already exists", UserMessage{
		Message: "A product with this SKU already exists",
		Action:  "Enable update mode or remove the row",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for duplicate entries in your file",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "A duplicate value was found",
		Action:  "Review your data for duplicate values",
		Code:    "DB002",
	}},
	{"foreign key constraint", UserMessage{
		Message: "Referenced category does not exist",
		Action:  "Create the category first, then import again",
		Code:    "DB003",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced category does not exist",
		Action:  "Create the category first, then import again",
		Code:    "DB003",
	}},
	{"category not found", UserMessage{
		Message: "Referenced category does not exist",
		Action:  "Create the category first, then import again",
		Code:    "DB003",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller batch or try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},

	// Access
	{"invalid api key", UserMessage{
		Message: "Missing or invalid API key",
		Action:  "Send a valid key in the X-API-Key header",
		Code:    "AUTH001",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first case-insensitive pattern match, or the ERR000
// fallback when nothing matches.
//
// Example:
//
//	msg := MapError(ErrTooManyImports)
//	// msg.Code == "IMP001"
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
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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
