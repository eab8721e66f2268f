package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/Zuo-Peng/wax/internal/sanitize"
)

// Format names a line grammar. It labels what an export looks like and never
// restricts which grammars later lines are tested against.
type Format string

const (
	FormatNone      Format = ""
	FormatBracketed Format = "bracketed-seconds" // [D/M/YYYY, H:MM:SS] User: text
	FormatHyphen    Format = "hyphen-minutes"    // D/M/YYYY H:MM - User: text
	FormatSystem    Format = "hyphen-system"     // D/M/YYYY H:MM - text
)

// Grammar recognizes one kind of message-start line.
type Grammar struct {
	Format Format
	re     *regexp.Regexp
	layout string // time layout for "date time"
	system bool   // no author group; the line is a system notice
}

// Grammars lists the message-start grammars in the order they are tried.
var Grammars = []Grammar{
	{
		Format: FormatBracketed,
		re:     regexp.MustCompile(`^[\x{200e}\x{200f}\x{feff}]*\[(\d{1,2}/\d{1,2}/\d{4}),\s+(\d{1,2}:\d{2}:\d{2})\]\s+([^:]+):\s*(.*)$`),
		layout: "2/1/2006 15:04:05",
	},
	{
		Format: FormatHyphen,
		re:     regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}),?\s+(\d{1,2}:\d{2})\s+-\s+([^:]+):\s*(.*)$`),
		layout: "2/1/2006 15:04",
	},
	{
		Format: FormatSystem,
		re:     regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}),?\s+(\d{1,2}:\d{2})\s+-\s+(.*)$`),
		layout: "2/1/2006 15:04",
		system: true,
	},
}

// Match holds the groups captured from a message-start line.
type Match struct {
	Format Format
	Date   string
	Time   string
	User   string
	Text   string // raw, still carrying marks and attachment tags
	layout string
}

// Match tests line against g.
func (g Grammar) Match(line string) (Match, bool) {
	sm := g.re.FindStringSubmatch(line)
	if sm == nil {
		return Match{}, false
	}
	m := Match{
		Format: g.Format,
		Date:   sm[1],
		Time:   sm[2],
		layout: g.layout,
	}
	if g.system {
		m.User = SystemUser
		m.Text = sm[3]
	} else {
		m.User = sanitize.Clean(sm[3])
		m.Text = sm[4]
	}
	return m, true
}

// Classify tries every grammar in order and returns the first match.
// A line matching none is a continuation line.
func Classify(line string) (Match, bool) {
	for _, g := range Grammars {
		if m, ok := g.Match(line); ok {
			return m, true
		}
	}
	return Match{}, false
}

// Timestamp renders the match time as TimestampLayout, seconds defaulting to
// zero for minute-precision grammars. When the date does not parse the raw
// "date time" text is returned unchanged.
func (m Match) Timestamp() string {
	raw := m.Date + " " + m.Time
	t, err := time.Parse(m.layout, raw)
	if err != nil {
		return raw
	}
	return t.Format(TimestampLayout)
}

// System reports whether the line had no author.
func (m Match) System() bool {
	return m.Format == FormatSystem
}

// typeRule maps lower-cased phrases to a message type.
type typeRule struct {
	Type    MessageType
	Phrases []string
}

// typeRules is evaluated in order; the first rule with a phrase contained in
// the text wins. Phrases cover Portuguese and English client languages.
var typeRules = []typeRule{
	{TypeCall, []string{"liga\u00e7\u00e3o", "chamada de voz", "chamada de v\u00eddeo", "voice call", "video call"}},
	{TypeDeleted, []string{"mensagem apagada", "mensagem foi apagada", "this message was deleted", "you deleted this message"}},
	{TypeHiddenAudio, []string{"\u00e1udio ocultado", "audio omitted"}},
	{TypeSystem, []string{
		"mudou o nome", "saiu", "foi adicionado", "removeu", "entrou",
		"changed the group name", "changed the subject", " added ", " removed ", " left the group", " joined using",
	}},
}

// ClassifyType derives the message type from the raw captured text.
func ClassifyType(text string) MessageType {
	lower := strings.ToLower(text)
	for _, r := range typeRules {
		for _, p := range r.Phrases {
			if strings.Contains(lower, p) {
				return r.Type
			}
		}
	}
	return TypeMessage
}
