package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrExportNotFound is returned when an export key is not in the index.
var ErrExportNotFound = errors.New("export not found in index")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS exports (
    export_key    TEXT PRIMARY KEY,
    file_path     TEXT NOT NULL,
    chat_name     TEXT NOT NULL DEFAULT '',
    media_dir     TEXT NOT NULL DEFAULT '',
    encoding      TEXT NOT NULL DEFAULT '',
    format        TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT '',
    updated_at    TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    export_key  TEXT NOT NULL,
    msg_id      INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    user        TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT 'message',
    text        TEXT NOT NULL,
    attachments TEXT NOT NULL DEFAULT '',
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (export_key, msg_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    user,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61 remove_diacritics 2'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text, user) VALUES (new.rowid, new.text, new.user);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text, user) VALUES('delete', old.rowid, old.text, old.user);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text, user) VALUES('delete', old.rowid, old.text, old.user);
    INSERT INTO messages_fts(rowid, text, user) VALUES (new.rowid, new.text, new.user);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever message parsing logic changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	// force re-index by resetting all export mtime/size to 0
	if _, err := d.db.Exec("UPDATE exports SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ExportInfo struct {
	Mtime int64
	Size  int64
}

// GetExportInfo returns nil when the export has not been indexed.
func (d *DB) GetExportInfo(exportKey string) (*ExportInfo, error) {
	var info ExportInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM exports WHERE export_key = ?",
		exportKey,
	).Scan(&info.Mtime, &info.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllExportKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT export_key FROM exports")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteExport(exportKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE export_key = ?", exportKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM exports WHERE export_key = ?", exportKey); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) ExportCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM exports").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type ExportRow struct {
	ExportKey    string
	FilePath     string
	ChatName     string
	MediaDir     string
	Encoding     string
	Format       string
	CreatedAt    string
	UpdatedAt    string
	Summary      string
	MessageCount int
}

const exportColumns = "export_key, file_path, chat_name, media_dir, encoding, format, created_at, updated_at, summary, message_count"

func scanExport(row interface{ Scan(...any) error }) (ExportRow, error) {
	var e ExportRow
	err := row.Scan(&e.ExportKey, &e.FilePath, &e.ChatName, &e.MediaDir, &e.Encoding,
		&e.Format, &e.CreatedAt, &e.UpdatedAt, &e.Summary, &e.MessageCount)
	return e, err
}

func (d *DB) GetExportByKey(exportKey string) (*ExportRow, error) {
	e, err := scanExport(d.db.QueryRow(
		"SELECT "+exportColumns+" FROM exports WHERE export_key = ?",
		exportKey,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", exportKey, ErrExportNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExports returns indexed exports, most recently active first.
func (d *DB) ListExports() ([]ExportRow, error) {
	rows, err := d.db.Query("SELECT " + exportColumns + " FROM exports ORDER BY updated_at DESC, export_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type MessageRow struct {
	ExportKey   string
	MsgID       int
	Ts          string
	User        string
	Type        string
	Text        string
	Attachments []string
	LineNumber  int
}

const messageColumns = "export_key, msg_id, ts, user, type, text, attachments, line_number"

func scanMessage(rows *sql.Rows) (MessageRow, error) {
	var m MessageRow
	var attachments string
	err := rows.Scan(&m.ExportKey, &m.MsgID, &m.Ts, &m.User, &m.Type, &m.Text, &attachments, &m.LineNumber)
	m.Attachments = SplitAttachments(attachments)
	return m, err
}

// JoinAttachments packs attachment names into one column. Sanitized names
// never contain a line break.
func JoinAttachments(names []string) string {
	return strings.Join(names, "\n")
}

func SplitAttachments(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (d *DB) GetMessages(exportKey string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE export_key = ? ORDER BY msg_id",
		exportKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []MessageRow
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// GetMessagesWindow returns a window of messages around a hit message.
// It only loads the necessary rows from the database instead of all messages.
// startPos is the number of messages before the returned window.
// totalCount is the total number of messages in the export.
func (d *DB) GetMessagesWindow(exportKey string, hitMsgID, context int) (msgs []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE export_key = ?", exportKey,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// msg_id is dense and 0-based, so it is also the row position
	startPos = 0
	limit := totalCount
	if hitMsgID >= 0 && hitMsgID < totalCount {
		startPos = max(hitMsgID-context, 0)
		limit = min(hitMsgID+context+1, totalCount) - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE export_key = ? ORDER BY msg_id LIMIT ? OFFSET ?",
		exportKey, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	hitIdx = -1
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, -1, 0, 0, err
		}
		if m.MsgID == hitMsgID {
			hitIdx = len(msgs)
		}
		msgs = append(msgs, m)
	}
	return msgs, hitIdx, startPos, totalCount, rows.Err()
}
