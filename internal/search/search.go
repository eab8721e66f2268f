package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wax/internal/index"
)

type Result struct {
	ExportKey  string
	MsgID      int
	Ts         string
	ChatName   string
	FilePath   string
	User       string
	Type       string
	Snippet    string
	LineNumber int
	Rank       float64
}

type Options struct {
	Query     string
	ExportKey string // "" = all exports
	User      string // "" = all authors; exact match
	Type      string // "" = all, or a parse.MessageType
	Since     string // "" = no filter, e.g. "2024-01-01"
	Limit     int
	// Collapse keeps only the best hit per export.
	Collapse bool
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// ftsQuery quotes each term so punctuation in chat text (":", "-", "'")
// is not read as FTS5 syntax. A trailing "*" keeps prefix matching.
func ftsQuery(q string) string {
	var terms []string
	for _, f := range strings.Fields(q) {
		prefix := strings.HasSuffix(f, "*")
		f = strings.TrimRight(f, "*")
		if f == "" {
			continue
		}
		term := `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		if prefix {
			term += "*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " ")
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if query == "" || idx < 0 || len(lower) != len(text) {
		// no match, return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before collapsing so we still have enough after
	origLimit := opts.Limit
	if opts.Collapse {
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	if containsCJK(opts.Query) || ftsQuery(opts.Query) == "" {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if !opts.Collapse {
		return results, nil
	}

	seen := make(map[string]bool)
	var collapsed []Result
	for _, r := range results {
		if seen[r.ExportKey] {
			continue
		}
		seen[r.ExportKey] = true
		collapsed = append(collapsed, r)
		if len(collapsed) >= origLimit {
			break
		}
	}
	return collapsed, nil
}

// filters renders the shared WHERE conditions for the message alias m and
// export alias e.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.ExportKey != "" {
		conditions = append(conditions, "m.export_key = ?")
		args = append(args, opts.ExportKey)
	}
	if opts.User != "" {
		conditions = append(conditions, "m.user = ?")
		args = append(args, opts.User)
	}
	if opts.Type != "" {
		conditions = append(conditions, "m.type = ?")
		args = append(args, opts.Type)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{ftsQuery(opts.Query)}

	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.export_key,
			m.msg_id,
			m.ts,
			e.chat_name,
			e.file_path,
			m.user,
			m.type,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 24) as snip,
			m.line_number,
			bm25(messages_fts, 1.0, 0.5) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN exports e ON m.export_key = e.export_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	var conditions []string
	var args []any

	// LIKE match for CJK substring search
	if opts.Query != "" {
		conditions = append(conditions, "m.text LIKE ?")
		args = append(args, "%"+opts.Query+"%")
	}

	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	where := "1 = 1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			m.export_key,
			m.msg_id,
			m.ts,
			e.chat_name,
			e.file_path,
			m.user,
			m.type,
			m.text,
			m.line_number
		FROM messages m
		JOIN exports e ON m.export_key = e.export_key
		WHERE %s
		ORDER BY m.ts DESC, m.export_key, m.msg_id
		LIMIT ?
	`, where)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.ExportKey, &r.MsgID, &r.Ts,
			&r.ChatName, &r.FilePath,
			&r.User, &r.Type,
			&fullText, &r.LineNumber,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ExportKey, &r.MsgID, &r.Ts,
			&r.ChatName, &r.FilePath,
			&r.User, &r.Type,
			&r.Snippet, &r.LineNumber, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns one result per indexed export, most recently active first.
// A non-empty Query filters by chat name or export key, case-insensitively.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	exports, err := db.ListExports()
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}

	filter := strings.ToLower(opts.Query)
	var results []Result
	for _, e := range exports {
		if filter != "" &&
			!strings.Contains(strings.ToLower(e.ChatName), filter) &&
			!strings.Contains(strings.ToLower(e.ExportKey), filter) {
			continue
		}
		if opts.Since != "" && e.UpdatedAt < opts.Since {
			continue
		}
		results = append(results, Result{
			ExportKey: e.ExportKey,
			MsgID:     -1,
			Ts:        e.UpdatedAt,
			ChatName:  e.ChatName,
			FilePath:  e.FilePath,
			Snippet:   fmt.Sprintf("%d messages  %s", e.MessageCount, e.Summary),
		})
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	return results, nil
}
