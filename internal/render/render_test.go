package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wax/internal/attach"
	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/parse"
)

// a minimal PNG header is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IMG-0001.jpg"), pngHeader, 0o644))

	a := Describe("00000003-IMG-0001.jpg", dir)
	assert.True(t, a.Found)
	assert.Equal(t, attach.KindImage, a.Kind)
	assert.Equal(t, filepath.Join(dir, "IMG-0001.jpg"), a.Path)
	assert.Equal(t, "image/png", a.MIME)

	a = Describe("missing.pdf", dir)
	assert.False(t, a.Found)
	assert.Equal(t, attach.KindDocument, a.Kind)
	assert.Empty(t, a.MIME)
}

func TestDescribeAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF-1.4\n"), 0o644))
	msgs := []parse.Message{
		{Attachments: []string{"0001-a.jpg", "b.pdf"}},
		{Attachments: []string{"a.jpg"}},
		{},
	}

	got := DescribeAll(msgs, dir)
	require.Len(t, got, 2)
	assert.Equal(t, "0001-a.jpg", got[0].Name)
	assert.Equal(t, "b.pdf", got[1].Name)
	assert.False(t, got[0].Found)
	assert.True(t, got[1].Found)
	assert.Equal(t, filepath.Join(dir, "b.pdf"), got[1].Path)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("%PDF-1.4\n"), 0o644))

	msgs := []parse.Message{
		{User: "Alice", Text: "hello beach", Timestamp: "2024-01-05 09:30:15", Type: parse.TypeMessage, SourceLine: 1},
		{User: "Bob", Text: "see file", Timestamp: "2024-01-05 09:31:00", Type: parse.TypeMessage, SourceLine: 2,
			Attachments: []string{"0001-report.pdf", "lost.jpg"}},
		{User: parse.SystemUser, Text: "Bob left", Timestamp: "2024-01-05 09:32:00", Type: parse.TypeSystem, SourceLine: 4},
	}

	out, hitLine := Render(Header{Key: "wa:x", ChatName: "X", MediaDir: dir}, Window{
		Messages: msgs, HitIdx: 1, Before: 2, After: 3,
	}, Options{Query: "beach", NoColor: true})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "--- X [wa:x] ---", lines[0])
	assert.Equal(t, "... (2 messages before) ...", lines[1])
	assert.Equal(t, ">> Bob > 2024-01-05 09:31:00 <<", lines[hitLine])
	assert.Contains(t, out, "Alice > 2024-01-05 09:30:15  L1")
	assert.Contains(t, out, "  hello beach")
	assert.Contains(t, out, "[document] 0001-report.pdf -> "+filepath.Join(dir, "report.pdf")+" (application/pdf)")
	assert.Contains(t, out, "[image] lost.jpg (not found)")
	assert.Contains(t, out, "Sistema (system) >")
	assert.Contains(t, out, "... (3 messages after) ...")
	assert.NotContains(t, out, "\033[")
}

func TestRenderHighlights(t *testing.T) {
	out, hitLine := Render(Header{Key: "wa:x"}, Window{
		Messages: []parse.Message{{User: "A", Text: "Beach time"}},
		HitIdx:   -1,
	}, Options{Query: "beach"})
	assert.Equal(t, -1, hitLine)
	assert.Contains(t, out, colorBoldRed+"Beach"+colorReset)
}

func TestRenderConversation(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "wax.db"))
	require.NoError(t, err)
	defer db.Close()

	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "[5/1/2024, 09:30:15] Alice: line")
	}
	msgs, _ := parse.ParseText(strings.Join(lines, "\n"))
	require.NoError(t, index.IndexExport(db, &parse.ParseResult{
		Meta:     parse.ExportMeta{ExportKey: "wa:c", ChatName: "C"},
		Messages: msgs,
	}))

	out, hitLine, err := RenderConversation(db, "wa:c", Options{HitMsgID: 15, Context: 2, NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, out, "... (13 messages before) ...")
	assert.Contains(t, out, "... (12 messages after) ...")
	assert.Equal(t, ">> Alice > 2024-01-05 09:30:15 <<", strings.Split(out, "\n")[hitLine])

	_, _, err = RenderConversation(db, "wa:none", Options{})
	assert.ErrorIs(t, err, index.ErrExportNotFound)
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"\033[1mab", "c\033[0m"}, wrapLine("\033[1mabc\033[0m", 2))
	assert.Equal(t, []string{""}, wrapLine("", 5))
	assert.Equal(t, []string{"abc"}, wrapLine("abc", 0))
}
