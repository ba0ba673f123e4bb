// Package errhandling provides error types and classification for the
// filter-data runtime. Every classified error maps to a process exit code.
package errhandling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryConfiguration represents invalid or missing arguments, flags,
	// module parameters and pipeline files that fail validation.
	CategoryConfiguration ErrorCategory = "configuration"

	// CategoryParse represents pipeline files that are not valid YAML or JSON.
	CategoryParse ErrorCategory = "parse"

	// CategoryIO represents failures reading input or writing output.
	CategoryIO ErrorCategory = "io"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitConfiguration = 1
	ExitParse         = 2
	ExitRuntime       = 3
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.OriginalErr != nil && e.OriginalErr.Error() != e.Message {
		return fmt.Sprintf("%s error: %s: %v", e.Category, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// NewConfigurationError creates a ClassifiedError for configuration errors.
func NewConfigurationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryConfiguration,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewParseError creates a ClassifiedError for pipeline file syntax errors.
func NewParseError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryParse,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewIOError creates a ClassifiedError for read and write failures.
func NewIOError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// ClassifyError classifies any error into a ClassifiedError.
//
// Classification rules:
//   - Already classified errors are returned unchanged
//   - *fs.PathError, os.ErrNotExist and os.ErrPermission: io
//   - context cancellation and deadline: io (the read was interrupted)
//   - Anything else: unknown
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{
			Category: CategoryUnknown,
			Message:  "nil error",
		}
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &ClassifiedError{
			Category:    CategoryIO,
			Message:     fmt.Sprintf("%s %s", pathErr.Op, pathErr.Path),
			OriginalErr: err,
		}
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return NewIOError(err.Error(), err)
	}

	if errors.Is(err, context.Canceled) {
		return NewIOError("context canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewIOError("deadline exceeded", err)
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// GetErrorCategory returns the error category for a given error.
// Returns CategoryUnknown for nil or unclassified errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}

	return CategoryUnknown
}

// ExitCode maps err to the process exit code. Nil maps to ExitOK.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch ClassifyError(err).Category {
	case CategoryConfiguration:
		return ExitConfiguration
	case CategoryParse:
		return ExitParse
	default:
		return ExitRuntime
	}
}
