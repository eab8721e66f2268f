package parse

import "time"

// MessageType classifies a parsed message.
type MessageType string

const (
	TypeMessage     MessageType = "message"
	TypeCall        MessageType = "call"
	TypeDeleted     MessageType = "deleted"
	TypeHiddenAudio MessageType = "hidden_audio"
	TypeSystem      MessageType = "system"
)

// SystemUser is the author given to notices that carry no explicit author.
const SystemUser = "Sistema"

// TimestampLayout is the layout of Message.Timestamp when the date parsed.
const TimestampLayout = "2006-01-02 15:04:05"

type Message struct {
	User        string
	Text        string   // sanitized; continuation lines joined with "\n"
	Timestamp   string   // TimestampLayout, or the raw "date time" text
	Attachments []string // unique by attach.CanonicalKey, first-seen order
	Type        MessageType
	SourceLine  int // 1-based line that started the message
}

type ExportMeta struct {
	ExportKey string
	FilePath  string
	ChatName  string
	MediaDir  string
	Encoding  string // decoding that succeeded
	Format    Format // first grammar seen; diagnostic only
	Lines     int
	CreatedAt string // first message timestamp
	UpdatedAt string // last message timestamp
	Summary   string
	Mtime     time.Time
	Size      int64
}

type ParseResult struct {
	Meta     ExportMeta
	Messages []Message
}
