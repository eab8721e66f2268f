package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wax/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// renderList renders the left panel: search results list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLine(r, width, i == m.cursor)...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// shortDate turns "2024-01-05 09:30:15" into "01-05 09:30"; anything else
// (a raw timestamp that did not parse) is cut to 11 columns.
func shortDate(ts string) string {
	if len(ts) >= 16 && ts[4] == '-' && ts[10] == ' ' {
		return ts[5:16]
	}
	return runewidth.Truncate(ts, 11, "")
}

func truncate(s string, maxW int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxW <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > maxW {
		return runewidth.Truncate(s, maxW, "")
	}
	return s
}

// formatResultLine formats a single search result as two lines:
//
//	line 1: [>] date  chat  user
//	line 2:    snippet (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	date := shortDate(r.Ts)

	// leave room for prefix "  " + date + two separators
	rest := width - 2 - runewidth.StringWidth(date) - 2
	chat := truncate(r.ChatName, rest/2)
	user := truncate(r.User, rest-runewidth.StringWidth(chat))

	line1 := fmt.Sprintf("%s %s %s", date, styleChat.Render(chat), styleUser.Render(user))
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	// Line 2: snippet (dimmed, indented)
	snippet := strings.ReplaceAll(r.Snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	snippet = truncate(snippet, width-4)
	line2 := "    " + styleSnippet.Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
