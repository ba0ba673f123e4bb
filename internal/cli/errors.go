// Package cli provides CLI output formatting and display functions.
// Everything is written to the diagnostic stream; standard output carries
// the data.
package cli

import (
	"fmt"
	"io"

	"github.com/patrickschulz/filter-data/internal/config"
)

// PrintParseErrors prints pipeline file parse errors.
func PrintParseErrors(w io.Writer, errors []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Parse errors:")
	for _, err := range errors {
		printSingleParseError(w, err, verbose)
	}
}

// printSingleParseError prints a single parse error with location information.
func printSingleParseError(w io.Writer, err config.ParseError, verbose bool) {
	location := formatErrorLocation(err.Path, err.Line, err.Column)

	if location != "" {
		fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
	} else {
		fmt.Fprintf(w, "  %s\n", err.Message)
	}

	if verbose && err.Type != "" {
		fmt.Fprintf(w, "    Type: %s\n", err.Type)
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}

	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints schema validation errors.
func PrintValidationErrors(w io.Writer, errors []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(w, "✗ Validation errors:")
	for _, err := range errors {
		path := err.Path
		if path == "" {
			path = "/"
		}
		if verbose {
			printVerboseValidationError(w, path, err)
		} else {
			printCompactValidationError(w, path, err.Message)
		}
	}
	if !quiet && !verbose {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

// printVerboseValidationError prints detailed validation error information.
func printVerboseValidationError(w io.Writer, path string, err config.ValidationError) {
	fmt.Fprintf(w, "  %s:\n", path)
	fmt.Fprintf(w, "    Message: %s\n", err.Message)
	if err.Type != "" {
		fmt.Fprintf(w, "    Keyword: %s\n", err.Type)
	}
}

// printCompactValidationError prints a compact validation error message.
func printCompactValidationError(w io.Writer, path, message string) {
	shortMsg := message
	if len(shortMsg) > 80 {
		shortMsg = shortMsg[:77] + "..."
	}
	fmt.Fprintf(w, "  %s: %s\n", path, shortMsg)
}

// PrintConfigResult prints the parse or validation errors of result, if any.
func PrintConfigResult(w io.Writer, result *config.Result, verbose, quiet bool) {
	if result == nil {
		return
	}
	if len(result.ParseErrors) > 0 {
		PrintParseErrors(w, result.ParseErrors, verbose)
		return
	}
	if len(result.ValidationErrors) > 0 {
		PrintValidationErrors(w, result.ValidationErrors, verbose, quiet)
	}
}
