// Package store persists uploads, their parsed messages, and analysis
// results in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS chat_uploads (
    id          TEXT PRIMARY KEY,
    file_name   TEXT NOT NULL,
    upload_date TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    upload_id TEXT NOT NULL,
    seq       INTEGER NOT NULL,
    sender    TEXT NOT NULL,
    content   TEXT NOT NULL,
    ts        TEXT NOT NULL,
    has_emoji INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (upload_id, seq)
);

CREATE TABLE IF NOT EXISTS analysis_results (
    upload_id            TEXT PRIMARY KEY,
    total_messages       INTEGER NOT NULL,
    messages_sent        INTEGER NOT NULL,
    messages_received    INTEGER NOT NULL,
    reference_sender     TEXT NOT NULL DEFAULT '',
    communicator_type    TEXT NOT NULL DEFAULT '',
    time_distribution    TEXT NOT NULL DEFAULT '{}',
    day_distribution     TEXT NOT NULL DEFAULT '{}',
    top_emojis           TEXT NOT NULL DEFAULT '[]',
    top_words            TEXT NOT NULL DEFAULT '[]',
    communication_styles TEXT NOT NULL DEFAULT '{}',
    sentiment            TEXT NOT NULL DEFAULT '',
    created_at           TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;
`

// timeLayout keeps stored timestamps timezone-naive; the export has no zone
// and everything is interpreted in the local calendar.
const timeLayout = "2006-01-02T15:04:05"

type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
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

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type UploadRow struct {
	ID         string
	FileName   string
	UploadDate string
	CreatedAt  string
}

func (d *DB) GetUpload(id string) (*UploadRow, error) {
	var u UploadRow
	err := d.db.QueryRow(
		"SELECT id, file_name, upload_date, created_at FROM chat_uploads WHERE id = ?",
		id,
	).Scan(&u.ID, &u.FileName, &u.UploadDate, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) ListUploads() ([]UploadRow, error) {
	rows, err := d.db.Query(
		"SELECT id, file_name, upload_date, created_at FROM chat_uploads ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []UploadRow
	for rows.Next() {
		var u UploadRow
		if err := rows.Scan(&u.ID, &u.FileName, &u.UploadDate, &u.CreatedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (d *DB) DeleteUpload(id string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE upload_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM analysis_results WHERE upload_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM chat_uploads WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) UploadCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chat_uploads").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type MessageRow struct {
	UploadID string
	Seq      int
	Sender   string
	Content  string
	Ts       string
	HasEmoji bool
}

func (d *DB) GetMessages(uploadID string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT upload_id, seq, sender, content, ts, has_emoji FROM messages WHERE upload_id = ? ORDER BY seq",
		uploadID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.UploadID, &m.Seq, &m.Sender, &m.Content, &m.Ts, &m.HasEmoji); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetMessagesWindow returns a window of messages around a hit, loading only
// the necessary rows. startPos is the number of messages before the window;
// totalCount is the total number of messages in the upload.
func (d *DB) GetMessagesWindow(uploadID string, hitSeq, context int) (messages []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE upload_id = ?", uploadID,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// find the 0-based position of the hit message
	hitPos := -1
	if hitSeq >= 0 {
		err = d.db.QueryRow(`
			SELECT pos FROM (
				SELECT seq, ROW_NUMBER() OVER (ORDER BY seq) - 1 AS pos
				FROM messages WHERE upload_id = ?
			) WHERE seq = ?`,
			uploadID, hitSeq,
		).Scan(&hitPos)
		if err == sql.ErrNoRows {
			hitPos = -1
			err = nil
		} else if err != nil {
			return nil, -1, 0, 0, err
		}
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = hitPos - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitPos + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT upload_id, seq, sender, content, ts, has_emoji FROM messages WHERE upload_id = ? ORDER BY seq LIMIT ? OFFSET ?",
		uploadID, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	var result []MessageRow
	localHitIdx := -1
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.UploadID, &m.Seq, &m.Sender, &m.Content, &m.Ts, &m.HasEmoji); err != nil {
			return nil, -1, 0, 0, err
		}
		if m.Seq == hitSeq {
			localHitIdx = len(result)
		}
		result = append(result, m)
	}
	return result, localHitIdx, startPos, totalCount, rows.Err()
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}
