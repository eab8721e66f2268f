package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wax/internal/index"
	"github.com/Zuo-Peng/wax/internal/parse"
	"github.com/Zuo-Peng/wax/internal/search"
)

func seedDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "wax.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	msgs, _ := parse.ParseText(strings.Join([]string{
		"[5/1/2024, 09:30:15] Alice: beach trip",
		"[5/1/2024, 09:31:00] Bob: beach again",
	}, "\n"))
	require.NoError(t, index.IndexExport(db, &parse.ParseResult{
		Meta:     parse.ExportMeta{ExportKey: "wa:f", ChatName: "Family", UpdatedAt: "2024-01-05 09:31:00"},
		Messages: msgs,
	}))
	return db
}

func TestShortDate(t *testing.T) {
	assert.Equal(t, "01-05 09:30", shortDate("2024-01-05 09:30:15"))
	assert.Equal(t, "31/2/2024 1", shortDate("31/2/2024 10:00:00"))
	assert.Equal(t, "", shortDate(""))
}

func TestFormatResultLine(t *testing.T) {
	r := search.Result{ChatName: "Family", User: "Alice", Ts: "2024-01-05 09:30:15", Snippet: "the >>>beach<<< trip"}
	lines := formatResultLine(r, 40, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "01-05 09:30")
	assert.Contains(t, lines[0], "Family")
	assert.Contains(t, lines[1], "the beach trip")
	assert.NotContains(t, lines[1], ">>>")
}

func TestAdjustListScroll(t *testing.T) {
	m := model{results: make([]search.Result, 20)}
	m.cursor = 12
	m.adjustListScroll(10) // 5 visible items
	assert.Equal(t, 8, m.listOffset)

	m.cursor = 3
	m.adjustListScroll(10)
	assert.Equal(t, 3, m.listOffset)
}

func TestSearchFlow(t *testing.T) {
	db := seedDB(t)
	m := initialModel(db, modeSearch, "beach", search.Options{})

	msg := m.doSearch("beach")()
	res, ok := msg.(searchResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	require.Len(t, res.results, 2)

	next, cmd := m.Update(res)
	m = next.(model)
	assert.Len(t, m.results, 2)
	require.NotNil(t, cmd)

	// a stale result for an older query is ignored
	next, _ = m.Update(searchResultMsg{query: "bea"})
	assert.Len(t, next.(model).results, 2)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NotNil(t, m.openResult)
	assert.Equal(t, m.results[1].MsgID, m.openResult.MsgID)
	assert.True(t, m.quitting)
}

func TestListFlow(t *testing.T) {
	db := seedDB(t)
	m := initialModel(db, modeList, "", search.Options{})

	res := m.doListAll("")().(searchResultMsg)
	require.NoError(t, res.err)
	require.Len(t, res.results, 1)
	assert.Equal(t, -1, res.results[0].MsgID)

	preview := loadPreviewCmd(db, res.results[0], "", 60)().(previewRenderedMsg)
	require.NoError(t, preview.err)
	assert.Contains(t, preview.content, "beach again")
	assert.Equal(t, -1, preview.hitLine)
}

func TestStatusMsg(t *testing.T) {
	m := initialModel(nil, modeSearch, "", search.Options{})
	next, _ := m.Update(statusMsg("copied"))
	assert.Contains(t, next.(model).statusBar(), "copied")
}
