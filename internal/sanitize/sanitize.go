// Package sanitize strips the invisible and control characters that chat
// exports sprinkle around names and message bodies.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// isMark reports the invisible marks exports insert around dates, names and
// attachment tags: LRM, RLM, BOM and no-break space.
func isMark(r rune) bool {
	switch r {
	case '\u200e', '\u200f', '\ufeff', '\u00a0':
		return true
	}
	return false
}

// Clean normalizes s (NFKC), drops invisible marks and every remaining
// character in a Unicode "other" category, then trims surrounding space.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if isMark(r) {
			return -1
		}
		if unicode.In(r, unicode.C) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// StripMarks removes invisible marks anywhere in s, leaving everything else.
func StripMarks(s string) string {
	return strings.Map(func(r rune) rune {
		if isMark(r) {
			return -1
		}
		return r
	}, s)
}

// StripLeadingMarks removes a leading run of invisible marks.
func StripLeadingMarks(s string) string {
	return strings.TrimLeftFunc(s, isMark)
}
