package index

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/wax/internal/parse"
	"github.com/Zuo-Peng/wax/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Empty   int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Empty, s.Pruned, s.Errors)
}

// IndexAll parses every export under root whose mtime or size changed since
// the last run, and drops exports whose files are gone. Per-file failures are
// logged and counted, never fatal.
func IndexAll(db *DB, root string, opts parse.Options) (Stats, error) {
	var stats Stats
	log := opts.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	files, err := scan.ScanRoot(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := parse.ExportKey(fi.Path, root)
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			log.Warn().Err(err).Str("file", fi.Path).Msg("read index state")
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		result, err := parse.ParseExport(fi.Path, root, opts)
		if err != nil {
			stats.Errors++
			log.Warn().Err(err).Str("file", fi.Path).Msg("parse export")
			continue
		}
		if len(result.Messages) == 0 {
			stats.Empty++
		}

		if err := IndexExport(db, result); err != nil {
			stats.Errors++
			log.Warn().Err(err).Str("file", fi.Path).Msg("index export")
			continue
		}
		stats.Updated++
	}

	// prune exports whose files no longer exist
	pruned, err := pruneExports(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, exportKey string, mtime, size int64) (bool, error) {
	info, err := db.GetExportInfo(exportKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new export
	}
	return info.Mtime != mtime || info.Size != size, nil
}

// IndexExport replaces whatever is stored under the result's export key.
func IndexExport(db *DB, result *parse.ParseResult) error {
	// delete old data first
	if err := db.DeleteExport(result.Meta.ExportKey); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := result.Meta
	_, err = tx.Exec(
		`INSERT INTO exports (export_key, file_path, chat_name, media_dir, encoding, format, created_at, updated_at, summary, message_count, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ExportKey,
		meta.FilePath,
		meta.ChatName,
		meta.MediaDir,
		meta.Encoding,
		string(meta.Format),
		meta.CreatedAt,
		meta.UpdatedAt,
		meta.Summary,
		len(result.Messages),
		meta.Mtime.Unix(),
		meta.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (export_key, msg_id, ts, user, type, text, attachments, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range result.Messages {
		_, err := stmt.Exec(
			meta.ExportKey,
			i,
			m.Timestamp,
			m.User,
			string(m.Type),
			m.Text,
			JoinAttachments(m.Attachments),
			m.SourceLine,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneExports(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllExportKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteExport(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
