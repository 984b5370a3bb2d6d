package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/chronicle/internal/codec"
	"github.com/roach88/chronicle/internal/schema"
	"github.com/roach88/chronicle/internal/store"
	"github.com/roach88/chronicle/internal/vcs"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (constraint violation, missing record, etc.)
	ExitCommandError = 2 // Command error (invalid flags, repository not found, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps a store operation error to its stable code string,
// used in JSON output and by scripts driving the CLI.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case store.IsRecordExists(err):
		return "record_exists"
	case store.IsRecordNotFound(err):
		return "record_not_found"
	case store.IsInvalidName(err):
		return "invalid_name"
	case vcs.IsTableNotFound(err):
		return "table_not_found"
	case vcs.IsRevisionNotFound(err):
		return "revision_not_found"
	case codec.IsMalformedTable(err):
		return "malformed_table"
	case schema.IsViolation(err):
		return "schema_violation"
	default:
		return "backend"
	}
}

// Response is the standard JSON response format for CLI output.
type Response struct {
	Status string `json:"status"`          // "ok" or "error"
	Data   any    `json:"data,omitempty"`  // success payload
	Error  *Error `json:"error,omitempty"` // error details
}

// Error is the error structure for CLI responses.
type Error struct {
	Code    string `json:"code"` // stable error code, see ErrorCode
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success outputs a successful result. In text mode, text is printed
// as-is; in JSON mode, data is wrapped in the standard response shape.
func (f *OutputFormatter) Success(text string, data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// OperationError outputs a failed store operation and returns an
// ExitError carrying the failure exit code.
func (f *OutputFormatter) OperationError(err error) error {
	code := ErrorCode(err)
	if f.Format == "json" {
		if encErr := json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &Error{Code: code, Message: err.Error()},
		}); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %v\n", code, err)
	}
	return &ExitError{Code: ExitFailure, Message: code, Err: err}
}
