package parse

import (
	"github.com/Zuo-Peng/wax/internal/attach"
	"github.com/Zuo-Peng/wax/internal/sanitize"
)

// Assembler rebuilds messages from lines. It is either idle or holds one open
// message that continuation lines extend; a new message-start line or Finish
// closes it.
//
// Continuation text is appended as "\n"+text, with one exception: when the
// open message has no text yet (its first line held only an attachment tag),
// the continuation becomes the text as is, with no leading line break.
type Assembler struct {
	messages []Message
	open     *Message
	cands    []attach.Candidate
	format   Format
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Feed consumes one raw line; lineNo is 1-based.
func (a *Assembler) Feed(lineNo int, raw string) {
	line := trimLine(raw)
	if m, ok := Classify(line); ok {
		a.start(lineNo, m)
		return
	}
	a.extend(line)
}

func (a *Assembler) start(lineNo int, m Match) {
	a.finalize()
	if a.format == FormatNone {
		a.format = m.Format
	}

	typ := ClassifyType(m.Text)
	if m.System() {
		typ = TypeSystem
	}
	a.open = &Message{
		User:       m.User,
		Text:       cleanText(m.Text),
		Timestamp:  m.Timestamp(),
		Type:       typ,
		SourceLine: lineNo,
	}
	a.cands = attach.Extract(m.Text)
}

func (a *Assembler) extend(line string) {
	if a.open == nil {
		return
	}
	clean := sanitize.Clean(line)
	a.cands = append(a.cands, attach.Extract(clean)...)
	text := cleanText(clean)
	switch {
	case text == "":
	case a.open.Text == "":
		a.open.Text = text
	default:
		a.open.Text += "\n" + text
	}
}

// finalize closes the open message, deduplicating every candidate gathered
// from its lines.
func (a *Assembler) finalize() {
	if a.open == nil {
		return
	}
	a.open.Attachments = attach.Dedupe(a.cands)
	a.messages = append(a.messages, *a.open)
	a.open = nil
	a.cands = nil
}

// Finish closes any open message and returns all messages in file order.
func (a *Assembler) Finish() []Message {
	a.finalize()
	return a.messages
}

// Format reports the first grammar that matched, if any.
func (a *Assembler) Format() Format {
	return a.format
}

func cleanText(s string) string {
	return sanitize.Clean(attach.StripTags(s))
}
