// Package fields splits delimited text lines into fields and turns them into rows.
//
// The scanner is a naive literal matcher: a separator matches only where its
// entire text occurs, and a failed partial match resumes one byte after the
// position where it started. Parsing is permissive, an unparseable field is 0.
package fields

import "strings"

// NextField locates the end of the field that starts at line[0].
//
// It returns the offset where the field ends, the offset where the next field
// starts, and whether this field is the last one on the line. The line ends at
// the end of the string or at the first '\n'. An empty separator never matches,
// so the whole line is one field.
func NextField(line, separator string) (end, next int, eol bool) {
	for pos := 0; ; pos++ {
		if pos >= len(line) || line[pos] == '\n' {
			return pos, pos, true
		}
		if separator != "" && strings.HasPrefix(line[pos:], separator) {
			return pos, pos + len(separator), false
		}
	}
}

// Split returns all fields of line. A line ending exactly at a separator has a
// trailing empty field, and an empty line has a single empty field.
func Split(line, separator string) []string {
	var out []string
	for {
		end, next, eol := NextField(line, separator)
		out = append(out, line[:end])
		if eol {
			return out
		}
		line = line[next:]
	}
}
