// Package search queries saved chats: FTS5 full-text search over message
// content, with a LIKE fallback for CJK queries, and a plain listing of
// stored uploads for the history view.
package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"chatwrap/internal/store"
)

type Result struct {
	UploadID   string
	Seq        int // -1 for upload-level rows
	FileName   string
	UploadDate string
	Sender     string
	Summary    string
	Snippet    string
	Rank       float64
}

type Options struct {
	Query  string
	Sender string // "" = all senders
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
// FTS5 unicode61 does not segment CJK text, so substring search needs LIKE.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 {
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search finds messages matching the query, deduplicated to the best-ranked
// hit per upload.
func Search(db *store.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.UploadID] {
			continue
		}
		seen[r.UploadID] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func searchFTS(db *store.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{opts.Query}

	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Since != "" {
		conditions = append(conditions, "u.upload_date >= ?")
		args = append(args, opts.Since)
	}

	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			m.upload_id,
			m.seq,
			u.file_name,
			u.upload_date,
			m.sender,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 40) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN chat_uploads u ON m.upload_id = u.id
		WHERE %s
		ORDER BY rank
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
		if err := rows.Scan(
			&r.UploadID, &r.Seq, &r.FileName, &r.UploadDate,
			&r.Sender, &r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func searchLike(db *store.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.content LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Since != "" {
		conditions = append(conditions, "u.upload_date >= ?")
		args = append(args, opts.Since)
	}

	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			m.upload_id,
			m.seq,
			u.file_name,
			u.upload_date,
			m.sender,
			m.content
		FROM messages m
		JOIN chat_uploads u ON m.upload_id = u.id
		WHERE %s
		ORDER BY u.upload_date DESC, m.seq
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
			&r.UploadID, &r.Seq, &r.FileName, &r.UploadDate,
			&r.Sender, &fullText,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns one row per stored upload, newest first, with a short
// summary from its analysis result. An optional query filters by file name.
func ListAll(db *store.DB, opts Options) ([]Result, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if opts.Query != "" {
		conditions = append(conditions, "u.file_name LIKE ?")
		args = append(args, "%"+opts.Query+"%")
	}
	if opts.Since != "" {
		conditions = append(conditions, "u.upload_date >= ?")
		args = append(args, opts.Since)
	}

	where := strings.Join(conditions, " AND ")
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}

	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.file_name,
			u.upload_date,
			r.total_messages,
			r.communicator_type
		FROM chat_uploads u
		LEFT JOIN analysis_results r ON r.upload_id = u.id
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT ?
	`, where)

	args = append(args, limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var total sql.NullInt64
		var ctype sql.NullString
		if err := rows.Scan(&r.UploadID, &r.FileName, &r.UploadDate, &total, &ctype); err != nil {
			return nil, err
		}
		r.Seq = -1
		if total.Valid {
			r.Summary = fmt.Sprintf("%d messages, %s", total.Int64, ctype.String)
		} else {
			r.Summary = "(no analysis stored)"
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
