package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wax/internal/parse"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "db", "wax.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

var familyChat = strings.Join([]string{
	"[5/1/2024, 09:30:15] Alice: Hello there",
	"[5/1/2024, 09:31:00] Bob: <attached: 00000001-PHOTO.jpg>",
	"nice view",
	"[5/1/2024, 09:32:00] Alice: Liga\u00e7\u00e3o de voz perdida",
}, "\n")

func TestIndexAll(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "family", "_chat.txt"), familyChat)
	writeFile(t, filepath.Join(root, "empty.txt"), "nothing here")

	stats, err := IndexAll(db, root, parse.Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 2, Updated: 2, Empty: 1}, stats)

	n, err := db.ExportCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.MessageCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	fts, err := db.FTSCount()
	require.NoError(t, err)
	assert.Equal(t, 3, fts)

	exp, err := db.GetExportByKey("wa:family/_chat")
	require.NoError(t, err)
	assert.Equal(t, "family", exp.ChatName)
	assert.Equal(t, "utf-8", exp.Encoding)
	assert.Equal(t, string(parse.FormatBracketed), exp.Format)
	assert.Equal(t, "2024-01-05 09:30:15", exp.CreatedAt)
	assert.Equal(t, "2024-01-05 09:32:00", exp.UpdatedAt)
	assert.Equal(t, 3, exp.MessageCount)

	msgs, err := db.GetMessages("wa:family/_chat")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Bob", msgs[1].User)
	assert.Equal(t, []string{"00000001-PHOTO.jpg"}, msgs[1].Attachments)
	assert.Equal(t, "nice view", msgs[1].Text)
	assert.Equal(t, 2, msgs[1].LineNumber)
	assert.Equal(t, string(parse.TypeCall), msgs[2].Type)
	assert.Nil(t, msgs[0].Attachments)

	// unchanged files are skipped on the next run
	stats, err = IndexAll(db, root, parse.Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 2, Skipped: 2}, stats)
}

func TestIndexAllReindexesChangedAndPrunes(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	chat := filepath.Join(root, "chat.txt")
	gone := filepath.Join(root, "gone.txt")
	writeFile(t, chat, "[5/1/2024, 09:30:15] Alice: one")
	writeFile(t, gone, "[5/1/2024, 09:30:15] Bob: bye")

	_, err := IndexAll(db, root, parse.Options{})
	require.NoError(t, err)

	writeFile(t, chat, "[5/1/2024, 09:30:15] Alice: one\n[5/1/2024, 09:40:00] Alice: two")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(chat, later, later))
	require.NoError(t, os.Remove(gone))

	stats, err := IndexAll(db, root, parse.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Pruned)

	msgs, err := db.GetMessages("wa:chat")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	_, err = db.GetExportByKey("wa:gone")
	assert.ErrorIs(t, err, ErrExportNotFound)
}

func TestIndexAllCountsUndecodable(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.txt"), "caf\xe9")

	stats, err := IndexAll(db, root, parse.Options{Fallbacks: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 0, stats.Updated)
}

func TestGetMessagesWindow(t *testing.T) {
	db := openTestDB(t)
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, "[5/1/2024, 09:30:15] Alice: m"+string(rune('0'+i)))
	}
	msgs, _ := parse.ParseText(strings.Join(lines, "\n"))
	require.NoError(t, IndexExport(db, &parse.ParseResult{
		Meta:     parse.ExportMeta{ExportKey: "wa:w", FilePath: "/w.txt"},
		Messages: msgs,
	}))

	win, hitIdx, start, total, err := db.GetMessagesWindow("wa:w", 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 3, start)
	assert.Equal(t, 2, hitIdx)
	require.Len(t, win, 5)
	assert.Equal(t, "m5", win[hitIdx].Text)

	win, hitIdx, start, _, err = db.GetMessagesWindow("wa:w", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, hitIdx)
	assert.Len(t, win, 3)

	win, hitIdx, _, _, err = db.GetMessagesWindow("wa:w", -1, 2)
	require.NoError(t, err)
	assert.Equal(t, -1, hitIdx)
	assert.Len(t, win, 10)
}

func TestListExports(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, IndexExport(db, &parse.ParseResult{Meta: parse.ExportMeta{ExportKey: "wa:old", UpdatedAt: "2023-01-01 00:00:00"}}))
	require.NoError(t, IndexExport(db, &parse.ParseResult{Meta: parse.ExportMeta{ExportKey: "wa:new", UpdatedAt: "2024-01-01 00:00:00"}}))

	rows, err := db.ListExports()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "wa:new", rows[0].ExportKey)
	assert.Equal(t, "wa:old", rows[1].ExportKey)
}

func TestSchemaVersionResetsMtime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wax.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, IndexExport(db, &parse.ParseResult{Meta: parse.ExportMeta{
		ExportKey: "wa:a", Mtime: time.Unix(100, 0), Size: 5,
	}}))
	_, err = db.Raw().Exec("UPDATE meta SET value = '0' WHERE key = 'schema_version'")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	info, err := db.GetExportInfo("wa:a")
	require.NoError(t, err)
	assert.Equal(t, &ExportInfo{}, info)
}
