package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const maxSummaryRunes = 200

// Options control how an export file is decoded and parsed.
type Options struct {
	// Encoding forces a single input encoding; empty means UTF-8 with fallbacks.
	Encoding string
	// Fallbacks are tried in order when input is not UTF-8. Nil means
	// DefaultFallbacks; an empty non-nil slice disables fallback.
	Fallbacks []string
	// MediaDir overrides the directory attachments are resolved against.
	MediaDir string
	Logger   *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

func trimLine(s string) string {
	return strings.TrimSpace(s)
}

// lineBreaks folds CRLF and lone CR line ends into LF.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func splitLines(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// ParseText reassembles messages from decoded export text.
func ParseText(text string) ([]Message, Format) {
	a := NewAssembler()
	for i, line := range splitLines(text) {
		a.Feed(i+1, line)
	}
	return a.Finish(), a.Format()
}

// ParseBytes decodes data and reassembles its messages. It returns the name
// of the encoding used. On a decoding failure no messages are returned.
func ParseBytes(data []byte, opts Options) ([]Message, Format, string, error) {
	text, enc, err := DecodeOptions(data, opts)
	if err != nil {
		return nil, FormatNone, "", err
	}
	msgs, format := ParseText(text)
	return msgs, format, enc, nil
}

// DecodeOptions decodes data the way ParseExport does: a forced encoding when
// set, otherwise UTF-8 followed by the configured fallbacks.
func DecodeOptions(data []byte, opts Options) (string, string, error) {
	if opts.Encoding != "" {
		text, err := DecodeAs(data, opts.Encoding)
		return text, strings.ToLower(opts.Encoding), err
	}
	names := opts.Fallbacks
	if names == nil {
		names = DefaultFallbacks
	}
	charsets, err := LookupCharsets(names)
	if err != nil {
		return "", "", err
	}
	return Decode(data, charsets)
}

// ParseExport parses the chat export at filePath. root, when set, is the
// directory exports are scanned from and scopes the export key.
func ParseExport(filePath, root string, opts Options) (*ParseResult, error) {
	log := opts.logger()

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	text, enc, err := DecodeOptions(data, opts)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	msgs, format := ParseText(text)

	mediaDir := opts.MediaDir
	if mediaDir == "" {
		mediaDir = filepath.Dir(filePath)
	}

	result := &ParseResult{
		Meta: ExportMeta{
			ExportKey: ExportKey(filePath, root),
			FilePath:  filePath,
			ChatName:  ChatName(filePath),
			MediaDir:  mediaDir,
			Encoding:  enc,
			Format:    format,
			Lines:     len(splitLines(text)),
			Mtime:     info.ModTime(),
			Size:      info.Size(),
		},
		Messages: msgs,
	}

	if len(msgs) > 0 {
		result.Meta.CreatedAt = msgs[0].Timestamp
		result.Meta.UpdatedAt = msgs[len(msgs)-1].Timestamp
		result.Meta.Summary = summarize(msgs)
	}

	log.Debug().
		Str("file", filePath).
		Str("encoding", enc).
		Str("format", string(format)).
		Int("messages", len(msgs)).
		Msg("parsed export")

	if len(msgs) == 0 {
		ev := log.Warn().Str("file", filePath)
		for _, p := range Probe(text, 3) {
			ev = ev.Str(fmt.Sprintf("line%d", p.Line), p.String())
		}
		ev.Msg("zero messages parsed")
	}

	return result, nil
}

// ExportKey derives a stable key from the export path relative to root.
func ExportKey(filePath, root string) string {
	rel := filepath.Base(filePath)
	if root != "" {
		if r, err := filepath.Rel(root, filePath); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return "wa:" + filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
}

var chatNamePrefixes = []string{
	"WhatsApp Chat with ",
	"WhatsApp Chat - ",
	"Conversa do WhatsApp com ",
	"Conversa do WhatsApp - ",
}

// ChatName guesses the chat title from the export file name, or from its
// directory for exports named "_chat.txt".
func ChatName(filePath string) string {
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	if name == "_chat" {
		name = filepath.Base(filepath.Dir(filePath))
	}
	for _, p := range chatNamePrefixes {
		if strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p)
		}
	}
	return name
}

func summarize(msgs []Message) string {
	for _, m := range msgs {
		if m.Type != TypeMessage || m.Text == "" {
			continue
		}
		s := []rune(m.Text)
		if len(s) > maxSummaryRunes {
			s = s[:maxSummaryRunes]
		}
		return strings.ReplaceAll(string(s), "\n", " ")
	}
	return ""
}

// LineProbe records how one line classified.
type LineProbe struct {
	Line    int
	Text    string
	Format  Format
	Matched bool
}

func (p LineProbe) String() string {
	if !p.Matched {
		return fmt.Sprintf("no grammar matched: %q", p.Text)
	}
	return fmt.Sprintf("%s: %q", p.Format, p.Text)
}

// Probe classifies the first n lines of text, for diagnosing exports that
// produced no messages.
func Probe(text string, n int) []LineProbe {
	var out []LineProbe
	for i, line := range splitLines(text) {
		if i >= n {
			break
		}
		line = trimLine(line)
		m, ok := Classify(line)
		out = append(out, LineProbe{Line: i + 1, Text: line, Format: m.Format, Matched: ok})
	}
	return out
}
