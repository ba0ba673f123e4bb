package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/patrickschulz/filter-data/internal/errhandling"
)

// Parse error types.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)

// ParseResult is a decoded pipeline document before schema validation.
type ParseResult struct {
	Data     map[string]interface{}
	Errors   []ParseError
	FilePath string // empty when parsed from a string
	Format   string // json or yaml
}

// IsValid reports whether the document decoded cleanly.
func (r *ParseResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ParseError locates a decoding failure. Line and Column are 1-based and zero
// when unknown; Offset is the byte offset for JSON syntax errors.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Offset  int64
	Message string
	Type    string // one of the ErrorType constants
}

func (e ParseError) Error() string {
	var loc string
	switch {
	case e.Line == 0:
		loc = e.Path
	case e.Path == "" && e.Column > 0:
		loc = fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	case e.Path == "":
		loc = fmt.Sprintf("line %d", e.Line)
	case e.Column > 0:
		loc = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	default:
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if loc == "" {
		return e.Message
	}
	return loc + ": " + e.Message
}

// ValidationResult is the outcome of checking a document against the schema.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError is one schema violation.
type ValidationError struct {
	// Path is a JSON pointer into the document, e.g. "/pipeline/input/xIndex".
	Path string
	// Type is the failing schema keyword (required, type, minimum, enum, ...).
	Type    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Result combines parsing and validation of one pipeline file.
type Result struct {
	Data             map[string]interface{}
	ParseErrors      []ParseError
	ValidationErrors []ValidationError
	FilePath         string
	Format           string
}

// IsValid reports whether the file parsed and validated.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors returns parse errors followed by validation errors.
func (r *Result) AllErrors() []error {
	all := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		all = append(all, e)
	}
	for _, e := range r.ValidationErrors {
		all = append(all, e)
	}
	return all
}

// Err returns nil for a valid result. Otherwise it returns a classified error:
// an unreadable file is an io error, a syntax or format problem is a parse
// error and a schema violation is a configuration error.
func (r *Result) Err() error {
	if r.IsValid() {
		return nil
	}
	name := r.FilePath
	if name == "" {
		name = "configuration"
	}
	joined := errors.Join(r.AllErrors()...)
	switch {
	case slices.ContainsFunc(r.ParseErrors, func(e ParseError) bool { return e.Type == ErrorTypeIO }):
		return errhandling.NewIOError("cannot read "+name, joined)
	case len(r.ParseErrors) > 0:
		return errhandling.NewParseError("cannot parse "+name, joined)
	default:
		return errhandling.NewConfigurationError("invalid pipeline in "+name, joined)
	}
}
