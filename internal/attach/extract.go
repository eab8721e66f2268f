// Package attach finds attachment references in chat text, merges duplicate
// references to the same file and maps names to files in a media directory.
package attach

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wax/internal/sanitize"
)

// Kind groups attachment extensions the way renderers present them.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindOther    Kind = "other"
)

var kindExtensions = map[Kind][]string{
	KindImage:    {"jpg", "jpeg", "png", "webp", "gif", "bmp"},
	KindDocument: {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx"},
	KindAudio:    {"mp3", "wav", "ogg", "m4a", "aac", "opus"},
	KindVideo:    {"mp4", "mov", "avi", "mkv", "webm"},
}

var extKind = func() map[string]Kind {
	m := make(map[string]Kind)
	for k, exts := range kindExtensions {
		for _, e := range exts {
			m[e] = k
		}
	}
	return m
}()

// KindOf classifies name by its extension.
func KindOf(name string) Kind {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return KindOther
	}
	if k, ok := extKind[strings.ToLower(name[i+1:])]; ok {
		return k
	}
	return KindOther
}

// extAlternation lists recognized extensions longest first so "docx" is
// never cut short to "doc".
func extAlternation() string {
	exts := make([]string, 0, len(extKind))
	for e := range extKind {
		exts = append(exts, e)
	}
	slices.SortFunc(exts, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return strings.Join(exts, "|")
}

// Pattern is one entry of the extraction table. Each entry is applied to the
// whole text on its own; Find returns the raw names it captures, in order.
type Pattern struct {
	Name string
	re   *regexp.Regexp
	// accept, when set, vetoes a match based on the text that follows it.
	accept func(rest string) bool
}

// Find returns every name captured by p in text.
func (p Pattern) Find(text string) []string {
	var names []string
	for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
		if p.accept != nil && !p.accept(text[m[1]:]) {
			continue
		}
		names = append(names, text[m[2]:m[3]])
	}
	return names
}

const (
	bullet   = "\u2022"
	tagNames = `(?:attached|anexado)`
	// nameChars excludes whitespace, path separators, the LRM mark and the
	// brackets that commonly wrap a bare file name.
	nameChars = `[^\s\x{200e}/\\<>()"']`
)

var (
	exts = extAlternation()

	// tagRe matches a whole attachment tag, for stripping from message text.
	tagRe = regexp.MustCompile(`(?i)<` + tagNames + `:[^>]*>`)
)

// Patterns is the ordered extraction table.
var Patterns = []Pattern{
	{
		Name: "tag",
		re:   regexp.MustCompile(`(?i)<` + tagNames + `:\s*([^>]+)>`),
	},
	{
		Name: "media-marker",
		re: regexp.MustCompile(`(?i)([^\s\x{200e}/\\]+(?:\s+[^\s\x{200e}/\\]*)*\.(?:` + exts + `))\s*` + bullet),
	},
	{
		Name: "marked-tag",
		re:   regexp.MustCompile(`(?i)[\x{200e}\x{200f}\x{feff}]+<` + tagNames + `:\s*([^>]+)>`),
	},
	{
		Name:   "bare-file",
		re:     regexp.MustCompile(`(?i)(` + nameChars + `+\.(?:` + exts + `))\b`),
		accept: notBeforeBullet,
	},
	{
		Name: "file-attached",
		re:   regexp.MustCompile(`(?i)(` + nameChars + `+\.\w+)\s*\((?:file attached|arquivo anexado)\)`),
	},
}

func notBeforeBullet(rest string) bool {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	return !strings.HasPrefix(rest, bullet)
}

// Extract runs every pattern over text and returns the cleaned candidates in
// pattern order, then match order. Duplicates are kept; see Dedupe.
func Extract(text string) []Candidate {
	var out []Candidate
	for _, p := range Patterns {
		for _, raw := range p.Find(text) {
			name := sanitize.StripLeadingMarks(sanitize.Clean(raw))
			if name == "" {
				continue
			}
			out = append(out, NewCandidate(name))
		}
	}
	return out
}

// StripTags removes attachment tags and invisible marks from text.
func StripTags(text string) string {
	return sanitize.StripMarks(tagRe.ReplaceAllString(text, ""))
}
