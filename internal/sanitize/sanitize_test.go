package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "hello", want: "hello"},
		{name: "trims", in: "  hello \t", want: "hello"},
		{name: "lrm and rlm", in: "\u200ephoto.jpg\u200f", want: "photo.jpg"},
		{name: "bom", in: "\ufeff00000012-doc.pdf", want: "00000012-doc.pdf"},
		{name: "nbsp becomes space", in: "a\u00a0b", want: "a b"},
		{name: "control chars", in: "a\x00b\x1fc\x7f", want: "abc"},
		{name: "compatibility forms", in: "\ufb01le", want: "file"},
		{name: "fullwidth digits", in: "\uff11\uff12", want: "12"},
		{name: "drops zwj", in: "\U0001F468\u200d\U0001F469", want: "\U0001F468\U0001F469"},
		{name: "drops zwsp", in: "IMG\u200b.jpg", want: "IMG.jpg"},
		{name: "keeps accents", in: "a\u0301udio", want: "\u00e1udio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	for _, in := range []string{"\u200e<attached: 0001-a.jpg>", " x\u00a0y ", "\ufb01"} {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), in)
	}
}

func TestStripLeadingMarks(t *testing.T) {
	assert.Equal(t, "a\u200eb", StripLeadingMarks("\u200e\u200f\ufeffa\u200eb"))
	assert.Equal(t, "", StripLeadingMarks("\u200e\u200e"))
	assert.Equal(t, "ab", StripMarks("\u200ea\u200fb\ufeff"))
}
