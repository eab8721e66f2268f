package attach

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// prefixRe matches the export counter some clients put in front of media
// file names ("00000043-PHOTO-2024-01-05.jpg").
var prefixRe = regexp.MustCompile(`^\d+-`)

// Candidate is an attachment name found in text, before deduplication.
type Candidate struct {
	Raw      string
	Key      string
	Prefixed bool
}

func NewCandidate(raw string) Candidate {
	return Candidate{
		Raw:      raw,
		Key:      CanonicalKey(raw),
		Prefixed: prefixRe.MatchString(raw),
	}
}

// StripPrefix removes a leading "digits-" counter from name.
func StripPrefix(name string) string {
	return prefixRe.ReplaceAllString(name, "")
}

// CanonicalKey folds name to the form used to detect duplicate references:
// counter prefix removed, lower case, only word characters, dots and hyphens.
func CanonicalKey(name string) string {
	name = strings.ToLower(StripPrefix(name))
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, name)
}

// preferred reports whether c should replace the kept candidate.
func preferred(c, kept Candidate) bool {
	if c.Prefixed != kept.Prefixed {
		return c.Prefixed
	}
	return utf8.RuneCountInString(c.Raw) > utf8.RuneCountInString(kept.Raw)
}

// Dedupe merges candidates sharing a canonical key and returns the surviving
// raw names in first-seen order of their keys.
func Dedupe(cands []Candidate) []string {
	if len(cands) == 0 {
		return nil
	}
	kept := make([]Candidate, 0, len(cands))
	pos := make(map[string]int, len(cands))
	for _, c := range cands {
		i, ok := pos[c.Key]
		if !ok {
			pos[c.Key] = len(kept)
			kept = append(kept, c)
			continue
		}
		if preferred(c, kept[i]) {
			kept[i] = c
		}
	}
	names := make([]string, len(kept))
	for i, c := range kept {
		names[i] = c.Raw
	}
	return names
}
