// # Error Codes Reference
//
// User-facing errors carry a short code that can be quoted when reporting
// problems. Codes are grouped by category:
//
//	FILE001 - Unsupported file type (.csv, .txt, .log only)
//	FILE002 - File too large
//	FILE003 - No file provided
//
//	ING001  - Parse failure: content could not be tokenized
//	ING002  - Empty file: header present but zero data rows
//
//	DS001   - No dataset loaded: query issued before a successful upload
//
//	PLT001  - Column not found: no column matches the requested field
//	PLT002  - Too few values: fewer than two numeric points to draw
//
//	ERR000  - Anything not matched above
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is a client-safe rendering of an internal error.
type UserMessage struct {
	Code    string // stable short code, e.g. "DS001"
	Message string // what went wrong, in user terms
	Action  string // what the user can do about it
}

// MapError translates an internal error into a UserMessage. The original
// error should still be logged server-side; only the UserMessage is meant
// to leave the process.
func MapError(err error) UserMessage {
	var parseErr *ParseError
	var colErr *ColumnNotFoundError

	switch {
	case errors.Is(err, ErrNoDataset):
		return UserMessage{
			Code:    "DS001",
			Message: "no dataset loaded",
			Action:  "Upload a log file first, then retry the query.",
		}
	case errors.Is(err, ErrEmptyFile):
		return UserMessage{
			Code:    "ING002",
			Message: "the uploaded file has no data rows",
			Action:  "Check that the file contains data below the header row.",
		}
	case errors.Is(err, ErrTooFewPoints):
		return UserMessage{
			Code:    "PLT002",
			Message: "not enough numeric values to plot",
			Action:  "The matched column needs at least two numeric values.",
		}
	case errors.As(err, &colErr):
		return UserMessage{
			Code:    "PLT001",
			Message: fmt.Sprintf("no column matching %q in the current dataset", colErr.Field),
			Action:  fmt.Sprintf("Expected one of: %s.", strings.Join(colErr.Aliases, ", ")),
		}
	case errors.As(err, &parseErr):
		return UserMessage{
			Code:    "ING001",
			Message: "the uploaded file could not be parsed",
			Action:  "Check that the file is delimited text or a drone log and saved as UTF-8.",
		}
	case errors.Is(err, ErrUnsupportedType):
		return UserMessage{
			Code:    "FILE001",
			Message: "unsupported file type",
			Action:  "Upload a .csv, .txt, or .log file.",
		}
	case errors.Is(err, ErrFileTooLarge):
		return UserMessage{
			Code:    "FILE002",
			Message: "the uploaded file is too large",
			Action:  "Split the log into smaller files and retry.",
		}
	}

	return UserMessage{
		Code:    "ERR000",
		Message: "an unexpected error occurred",
		Action:  "Please try again.",
	}
}
