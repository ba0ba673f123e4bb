package fields

import (
	"errors"

	"github.com/patrickschulz/filter-data/internal/dataset"
)

// ShortLinePolicy decides what happens to a line that has fewer fields than
// the x or y index requires.
type ShortLinePolicy int

const (
	// ShortLineKeep keeps the row; the missing side holds its zero value.
	ShortLineKeep ShortLinePolicy = iota
	// ShortLineReject drops the row before it reaches the filter chain.
	ShortLineReject
)

// String returns the policy name used in configuration.
func (p ShortLinePolicy) String() string {
	if p == ShortLineReject {
		return "reject"
	}
	return "keep"
}

// ErrEmptySeparator is returned by Validate when no separator is configured.
var ErrEmptySeparator = errors.New("separator must not be empty")

// Builder extracts the x and y fields of a line into a dataset.Row.
type Builder struct {
	// Separator is the literal field separator, one or more bytes.
	Separator string
	// XIndex is the 0-based field index of x.
	XIndex uint
	// YIndex is the 0-based field index of y.
	YIndex uint
	// YAsText stores y as raw text instead of parsing it as a number.
	YAsText bool
	// ShortLines is the policy for lines missing the x or y field.
	ShortLines ShortLinePolicy
}

// Validate checks the builder configuration.
func (b *Builder) Validate() error {
	if b.Separator == "" {
		return ErrEmptySeparator
	}
	return nil
}

// Build parses one line. The boolean result is false when the row must be
// dropped under the short-line policy; with ShortLineKeep it is always true.
func (b *Builder) Build(line string) (dataset.Row, bool) {
	var row dataset.Row
	var seenX, seenY bool
	last := max(b.XIndex, b.YIndex)

	rest := line
	for index := uint(0); ; index++ {
		end, next, eol := NextField(rest, b.Separator)
		field := rest[:end]
		if index == b.XIndex {
			row.X = ParseNumber(field)
			seenX = true
		}
		if index == b.YIndex {
			if b.YAsText {
				row.Y = dataset.Text(field)
			} else {
				row.Y = dataset.Real(ParseNumber(field))
			}
			seenY = true
		}
		if eol || index == last {
			break
		}
		rest = rest[next:]
	}

	if !(seenX && seenY) && b.ShortLines == ShortLineReject {
		return row, false
	}
	return row, true
}
