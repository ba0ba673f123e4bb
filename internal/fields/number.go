package fields

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts the longest numeric prefix of s to a float64.
//
// Leading whitespace, a sign, a decimal point, an exponent and the words
// "inf", "infinity" and "nan" (any case) are accepted, as are hexadecimal
// numbers with an optional binary exponent ("0x10", "0x1.8p3"). Input without
// a numeric prefix yields 0. Values beyond the float64 range saturate to ±Inf.
func ParseNumber(s string) float64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}

	switch rest := s[i:]; {
	case hasPrefixFold(rest, "inf"):
		if negative {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case hasPrefixFold(rest, "nan"):
		return math.NaN()
	}

	if hasPrefixFold(s[i:], "0x") {
		if f, ok := parseHex(s[start:i], s[i+2:]); ok {
			return f
		}
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	// range errors still carry the saturated value
	f, _ := strconv.ParseFloat(s[start:i], 64)
	return f
}

// parseHex parses the longest hexadecimal prefix of rest, the text after "0x".
// It reports false when no hex digit follows, leaving "0x" to parse as 0.
func parseHex(sign, rest string) (float64, bool) {
	i, digits := 0, 0
	for i < len(rest) && isHexDigit(rest[i]) {
		i++
		digits++
	}
	if i < len(rest) && rest[i] == '.' {
		i++
		for i < len(rest) && isHexDigit(rest[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	mantissa := rest[:i]

	exponent := "p0"
	if i < len(rest) && (rest[i] == 'p' || rest[i] == 'P') {
		j := i + 1
		if j < len(rest) && (rest[j] == '+' || rest[j] == '-') {
			j++
		}
		k := j
		for k < len(rest) && isDigit(rest[k]) {
			k++
		}
		if k > j {
			exponent = rest[i:k]
		}
	}

	// strconv requires the binary exponent on hex input
	f, _ := strconv.ParseFloat(sign+"0x"+mantissa+exponent, 64)
	return f, true
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
