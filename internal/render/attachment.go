package render

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/Zuo-Peng/wax/internal/attach"
	"github.com/Zuo-Peng/wax/internal/parse"
)

// Attachment is an attachment name together with what the media directory
// holds for it.
type Attachment struct {
	Name  string
	Kind  attach.Kind
	Path  string
	Found bool
	MIME  string // sniffed from content; empty when not found
}

// Describe resolves name in mediaDir and sniffs the resolved file's type.
func Describe(name, mediaDir string) Attachment {
	return describe(attach.Resolver{Dir: mediaDir}, name)
}

func describe(r attach.Resolver, name string) Attachment {
	a := Attachment{Name: name, Kind: attach.KindOf(name)}
	path, ok := r.Resolve(name)
	if !ok {
		return a
	}
	a.Path, a.Found = path, true
	if mt, err := mimetype.DetectFile(path); err == nil {
		a.MIME = mt.String()
	} else {
		a.MIME = "application/octet-stream"
	}
	return a
}

// DescribeAll describes every distinct attachment across msgs, in first-seen
// order.
func DescribeAll(msgs []parse.Message, mediaDir string) []Attachment {
	r := attach.Resolver{Dir: mediaDir}
	seen := make(map[string]bool)
	var out []Attachment
	for _, m := range msgs {
		for _, name := range m.Attachments {
			key := attach.CanonicalKey(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, describe(r, name))
		}
	}
	return out
}
