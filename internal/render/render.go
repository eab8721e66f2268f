package render

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/parse"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorSystem  = "\033[2;35m" // dim magenta for notices
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
	colorMissing = "\033[31m"
)

// userColors are assigned to authors by name hash so one author keeps one
// color across previews.
var userColors = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;36m", // bold cyan
	"\033[1;33m", // bold yellow
	"\033[1;35m", // bold magenta
}

type Options struct {
	HitMsgID int
	Context  int    // messages before/after hit to show
	Width    int    // wrap width (0 = no wrap)
	Query    string // search query for keyword highlighting
	// MediaDir overrides the directory attachments are resolved against.
	MediaDir string
	// NoColor drops ANSI sequences, for piping.
	NoColor bool
}

func userColor(user string) string {
	h := fnv.New32a()
	h.Write([]byte(user))
	return userColors[h.Sum32()%uint32(len(userColors))]
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	for _, term := range strings.Fields(query) {
		term = strings.Trim(term, `"*`)
		if term == "" {
			continue
		}
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 || len(strings.ToLower(text[i:])) != len(text[i:]) {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// stripANSI removes escape sequences written by this package.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Header describes the conversation being rendered.
type Header struct {
	Key      string
	ChatName string
	MediaDir string
}

// Window is a contiguous run of messages out of a larger conversation.
type Window struct {
	Messages []parse.Message
	HitIdx   int // index into Messages, -1 for none
	Before   int // messages omitted before the window
	After    int // messages omitted after the window
}

// RenderConversation renders an indexed export and returns the content,
// the 0-based line number of the hit message header (-1 if no hit), and any error.
func RenderConversation(db *index.DB, exportKey string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	exp, err := db.GetExportByKey(exportKey)
	if err != nil {
		return "", -1, fmt.Errorf("get export: %w", err)
	}

	rows, hitIdx, startPos, totalCount, err := db.GetMessagesWindow(exportKey, opts.HitMsgID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}

	if totalCount == 0 {
		return "(empty export)", -1, nil
	}

	msgs := make([]parse.Message, len(rows))
	for i, r := range rows {
		msgs[i] = FromRow(r)
	}
	out, hitLine := Render(Header{Key: exportKey, ChatName: exp.ChatName, MediaDir: exp.MediaDir}, Window{
		Messages: msgs,
		HitIdx:   hitIdx,
		Before:   startPos,
		After:    totalCount - startPos - len(rows),
	}, opts)
	return out, hitLine, nil
}

// FromRow turns an indexed message back into a parse.Message.
func FromRow(r index.MessageRow) parse.Message {
	return parse.Message{
		User:        r.User,
		Text:        r.Text,
		Timestamp:   r.Ts,
		Attachments: r.Attachments,
		Type:        parse.MessageType(r.Type),
		SourceLine:  r.LineNumber,
	}
}

// Render draws a window of messages. It returns the content and the 0-based
// line of the hit message header, -1 if none.
func Render(h Header, w Window, opts Options) (string, int) {
	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + strings.Repeat("-", 50) + colorReset
	mediaDir := h.MediaDir
	if opts.MediaDir != "" {
		mediaDir = opts.MediaDir
	}

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		if opts.NoColor {
			s = stripANSI(s)
		}
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	// header
	writeLine(fmt.Sprintf("%s--- %s [%s] ---%s", colorDim, h.ChatName, h.Key, colorReset))

	if w.Before > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, w.Before, colorReset))
	}

	for i, m := range w.Messages {
		isHit := i == w.HitIdx

		// separator between messages
		if i > 0 {
			writeLine(separator)
		}

		if isHit {
			hitLine = lineCount
		}

		label := m.User
		if m.Type != parse.TypeMessage && m.Type != "" {
			label += " (" + string(m.Type) + ")"
		}
		color := userColor(m.User)
		if m.Type == parse.TypeSystem {
			color = colorSystem
		}

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, label, m.Timestamp, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s  L%d%s", color, label, colorReset, colorDim, m.Timestamp, m.SourceLine, colorReset))
		}

		text := m.Text
		if m.Type == parse.TypeDeleted || m.Type == parse.TypeSystem {
			text = colorDim + text + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		if text != "" {
			for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
				writeLine(tl)
			}
		}

		for _, name := range m.Attachments {
			writeLine("  " + attachmentLine(Describe(name, mediaDir)))
		}
		writeLine("") // blank line after message
	}

	if w.After > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, w.After, colorReset))
	}

	return b.String(), hitLine
}

func attachmentLine(a Attachment) string {
	if !a.Found {
		return fmt.Sprintf("%s[%s] %s (not found)%s", colorMissing, a.Kind, a.Name, colorReset)
	}
	return fmt.Sprintf("%s[%s] %s -> %s (%s)%s", colorDim, a.Kind, a.Name, a.Path, a.MIME, colorReset)
}
