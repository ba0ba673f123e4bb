// Package input provides implementations for input modules.
// Input modules are responsible for delivering the raw text lines of a data
// source, one at a time, to the runtime.
package input

import (
	"context"
	"errors"
)

// ErrStop can be returned by a LineFunc to end reading early without an error.
var ErrStop = errors.New("stop reading")

// LineFunc receives one input line without its line terminator. lineNo is the
// 1-based line number in the source, header lines included.
type LineFunc func(lineNo int, line string) error

// Module represents an input module that reads lines from a source.
type Module interface {
	// ReadLines calls fn for every line after the skipped header lines and
	// returns how many lines were delivered. The context is checked between
	// lines so long reads can be cancelled.
	ReadLines(ctx context.Context, fn LineFunc) (int, error)
	// Close releases any resources held by the module.
	Close() error
}
