package nmea

import "strings"

// SplitMode selects how the delimiter argument of SplitFields is interpreted.
type SplitMode int

const (
	// SplitAnyOf splits at any single byte contained in the delimiter set.
	SplitAnyOf SplitMode = iota
	// SplitLiteral splits at each occurrence of the whole delimiter string.
	SplitLiteral
)

// SplitFields splits s left to right without overlap. A string with D
// delimiter occurrences yields exactly D+1 fields; empty fields are kept and
// nothing is trimmed.
func SplitFields(s, delim string, mode SplitMode) []string {
	if delim == "" {
		return []string{s}
	}

	find := func(str string) int { return strings.IndexAny(str, delim) }
	width := 1
	if mode == SplitLiteral {
		find = func(str string) int { return strings.Index(str, delim) }
		width = len(delim)
	}

	var fields []string
	for {
		pos := find(s)
		if pos < 0 {
			break
		}
		fields = append(fields, s[:pos])
		s = s[pos+width:]
	}
	return append(fields, s)
}
