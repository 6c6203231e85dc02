package core

// errors.go defines the validation error surfaced for malformed uploads
// and the mapping from internal errors to user-facing messages.
//
// Error codes are quoted by users to support staff for faster diagnosis:
//
//	VAL001 - master CSV is missing required columns
//	VAL002 - template CSV has no header row
//	FILE001 - uploaded file exceeds the size limit
//	FILE004 - a required file was not provided
//	UPL005 - the request timed out
//	SYS001 - anything else

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError means the uploaded input is malformed and the export
// was aborted before any row processing. It is surfaced to the client as
// a 400 response.
type ValidationError struct {
	// Reason is the human-readable description.
	Reason string

	// Missing lists absent required columns, alphabetically sorted,
	// when that is what went wrong.
	Missing []string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// newMissingColumnsError builds the validation error for a master sheet
// whose header lacks required columns.
func newMissingColumnsError(missing []string) *ValidationError {
	sorted := make([]string, len(missing))
	copy(sorted, missing)
	sort.Strings(sorted)
	return &ValidationError{
		Reason:  fmt.Sprintf("master CSV missing columns: %s", strings.Join(sorted, ", ")),
		Missing: sorted,
	}
}

// errEmptyTemplate is returned when the template upload has no header row.
func errEmptyTemplate() *ValidationError {
	return &ValidationError{Reason: "template CSV is empty"}
}

// UserMessage is a sanitized, user-facing rendering of an error.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// MapError converts an internal error to a user-friendly message.
// Technical details stay in the server logs; clients get the message,
// a suggested action, and a support code.
func MapError(err error) UserMessage {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		if len(vErr.Missing) > 0 {
			return UserMessage{
				Code:    "VAL001",
				Message: vErr.Reason,
				Action:  "Add the missing columns to the master sheet header and re-upload",
			}
		}
		return UserMessage{
			Code:    "VAL002",
			Message: vErr.Reason,
			Action:  "Upload a Shopify template CSV with at least a header row",
		}
	}

	// ParseMultipartForm does not always wrap the MaxBytesError, so the
	// message text is checked too.
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
		return UserMessage{
			Code:    "FILE001",
			Message: "Uploaded file exceeds the size limit",
			Action:  "Split the sheet into smaller files and try again",
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "no file provided"):
		return UserMessage{
			Code:    "FILE004",
			Message: "A required file was not provided",
			Action:  "Select both the master sheet and the Shopify template",
		}
	case strings.Contains(msg, "context deadline exceeded"):
		return UserMessage{
			Code:    "UPL005",
			Message: "The export timed out",
			Action:  "Try a smaller sheet or check the catalog API configuration",
		}
	default:
		return UserMessage{
			Code:    "SYS001",
			Message: "Something went wrong while generating the export",
			Action:  "Try again; quote this code if the problem persists",
		}
	}
}
