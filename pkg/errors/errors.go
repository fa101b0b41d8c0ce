// Package errors provides structured error types for hivedoc.
//
// Every failure that can abort a documentation build carries a
// machine-readable [Code] so the CLI and the preview server can report it
// consistently:
//   - MISSING_ENV: a required environment variable is unset
//   - EXTERNAL_PROCESS: the graph generation script failed or is missing
//   - FILESYSTEM: temp files or output files could not be written
//   - INVALID_*: bad user input or configuration
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingEnv, "%s is not set", "EHIVE_ROOT_DIR")
//	if errors.Is(err, errors.ErrCodeMissingEnv) {
//	    // Tell the user how to configure the eHive installation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFilesystem, origErr, "create %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Environment and collaborator errors
	ErrCodeMissingEnv      Code = "MISSING_ENV"
	ErrCodeExternalProcess Code = "EXTERNAL_PROCESS"
	ErrCodeFilesystem      Code = "FILESYSTEM"

	// Document processing errors
	ErrCodeDirective Code = "DIRECTIVE"
	ErrCodeRender    Code = "RENDER"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain has the given code, so a
// MISSING_ENV failure stays visible after being wrapped as DIRECTIVE.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCodeOr returns the outermost error code, or fallback when err carries
// none.
func GetCodeOr(err error, fallback Code) Code {
	if code := GetCode(err); code != "" {
		return code
	}
	return fallback
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ProcessError describes a failed run of an external program.
type ProcessError struct {
	Program  string // Path of the executable
	ExitCode int    // -1 when the program never started
	Stderr   string // Captured standard error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: could not be started", e.Program)
	}
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Program, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Program, e.ExitCode, e.Stderr)
}

// Code returns the error code for this error type.
func (e *ProcessError) Code() Code {
	return ErrCodeExternalProcess
}
