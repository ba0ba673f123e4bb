// Package dataset holds the in-memory representation of an extracted series:
// tagged y values, rows with a soft-delete flag, and the growable row sequence.
package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the discriminant of a Value.
type Kind uint8

const (
	// KindReal is a float64 value. It is the zero Kind, so the zero Value is Real(0).
	KindReal Kind = iota
	// KindInteger is an int64 value.
	KindInteger
	// KindText is a raw string value.
	KindText
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a y value: exactly one of real, integer or text is active, selected by kind.
type Value struct {
	kind    Kind
	real    float64
	integer int64
	text    string
}

// Real returns a Value holding f.
func Real(f float64) Value {
	return Value{kind: KindReal, real: f}
}

// Integer returns a Value holding i.
func Integer(i int64) Value {
	return Value{kind: KindInteger, integer: i}
}

// Text returns a Value holding s.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind returns the active variant.
func (v Value) Kind() Kind {
	return v.kind
}

// Real returns the float payload and whether the active variant is KindReal.
func (v Value) Real() (float64, bool) {
	return v.real, v.kind == KindReal
}

// Integer returns the integer payload and whether the active variant is KindInteger.
func (v Value) Integer() (int64, bool) {
	return v.integer, v.kind == KindInteger
}

// Text returns the text payload and whether the active variant is KindText.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Float returns the value as float64 for numeric variants.
// The second result is false for text.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindReal:
		return v.real, true
	case KindInteger:
		return float64(v.integer), true
	case KindText:
		return 0, false
	default:
		panic(fmt.Sprintf("dataset: unknown value kind %d", v.kind))
	}
}

// Equal reports whether v and o are equal under the comparison rules of their
// variant: reals within tolerance (strictly less than), integers and text exactly.
// Values of different variants are never equal.
func (v Value) Equal(o Value, tolerance float64) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindReal:
		return math.Abs(v.real-o.real) < tolerance
	case KindInteger:
		return v.integer == o.integer
	case KindText:
		return v.text == o.text
	default:
		panic(fmt.Sprintf("dataset: unknown value kind %d", v.kind))
	}
}

// Format renders the value for text output: reals with the given number of
// decimals, integers in plain decimal notation, text verbatim.
func (v Value) Format(decimals int) string {
	switch v.kind {
	case KindReal:
		return FormatFloat(v.real, decimals)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindText:
		return v.text
	default:
		panic(fmt.Sprintf("dataset: unknown value kind %d", v.kind))
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case KindReal:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindText:
		return strconv.Quote(v.text)
	default:
		return fmt.Sprintf("kind(%d)", uint8(v.kind))
	}
}

// FormatFloat formats f in fixed notation with decimals digits after the point.
// Negative decimals are treated as zero.
func FormatFloat(f float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// Tolerance returns 10^-decimals, the equality tolerance for a decimal precision.
func Tolerance(decimals int) float64 {
	return math.Pow(10, -float64(decimals))
}
