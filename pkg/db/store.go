package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// boundExecutor rewrites placeholders before delegating.
type boundExecutor struct {
	ex      DBExecutor
	dialect Dialect
}

// Bind wraps ex so that queries written with ? placeholders run on the dialect.
func Bind(ex DBExecutor, dialect Dialect) DBExecutor {
	if dialect != Postgres {
		return ex
	}
	return boundExecutor{ex: ex, dialect: dialect}
}

func (b boundExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return b.ex.ExecContext(ctx, b.dialect.Rebind(query), args...)
}

func (b boundExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return b.ex.QueryContext(ctx, b.dialect.Rebind(query), args...)
}

func (b boundExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return b.ex.QueryRowContext(ctx, b.dialect.Rebind(query), args...)
}

// CreateOrGetTerm returns the id of an existing term key or inserts it.
func CreateOrGetTerm(ctx context.Context, db DBExecutor, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, fmt.Errorf("term key must be non-empty")
	}
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO terms (term_key) VALUES (?)
		ON CONFLICT(term_key) DO UPDATE SET term_key = excluded.term_key
		RETURNING id`, key).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert term: %w", err)
	}
	return id, nil
}

// CreateOrGetDocument returns the id of an existing document key or inserts it.
func CreateOrGetDocument(ctx context.Context, db DBExecutor, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, fmt.Errorf("document key must be non-empty")
	}
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO documents (doc_key) VALUES (?)
		ON CONFLICT(doc_key) DO UPDATE SET doc_key = excluded.doc_key
		RETURNING id`, key).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}
	return id, nil
}

// InsertOccurrence records one span of a term in a document, creating the term and
// document rows when missing.
func InsertOccurrence(ctx context.Context, db DBExecutor, termKey, docKey string, begin, end int) error {
	if begin < 0 || end < begin {
		return fmt.Errorf("invalid span [%d,%d)", begin, end)
	}
	termID, err := CreateOrGetTerm(ctx, db, termKey)
	if err != nil {
		return err
	}
	docID, err := CreateOrGetDocument(ctx, db, docKey)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO occurrences (term_id, document_id, begin_offset, end_offset) VALUES (?, ?, ?, ?)`,
		termID, docID, begin, end)
	if err != nil {
		return fmt.Errorf("insert occurrence: %w", err)
	}
	return nil
}

// OccurrenceIDsByTerm lists the occurrence ids of a term in insertion order.
func OccurrenceIDsByTerm(ctx context.Context, db DBExecutor, termKey string) ([]int64, error) {
	return queryIDs(ctx, db, `SELECT o.id FROM occurrences o JOIN terms t ON t.id = o.term_id
		WHERE t.term_key = ? ORDER BY o.id`, termKey)
}

// OccurrenceIDsByDocument lists the occurrence ids of a document by position.
func OccurrenceIDsByDocument(ctx context.Context, db DBExecutor, docKey string) ([]int64, error) {
	return queryIDs(ctx, db, `SELECT o.id FROM occurrences o JOIN documents d ON d.id = o.document_id
		WHERE d.doc_key = ? ORDER BY o.begin_offset, o.id`, docKey)
}

func queryIDs(ctx context.Context, db DBExecutor, query string, args ...interface{}) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOccurrences fetches occurrences by id. Rows come back keyed by id; missing ids
// are absent from the map.
func GetOccurrences(ctx context.Context, db DBExecutor, ids []int64) (map[int64]Occurrence, error) {
	out := make(map[int64]Occurrence, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	rows, err := db.QueryContext(ctx, `SELECT o.id, t.term_key, d.doc_key, o.begin_offset, o.end_offset
		FROM occurrences o
		JOIN terms t ON t.id = o.term_id
		JOIN documents d ON d.id = o.document_id
		WHERE o.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o Occurrence
		if err := rows.Scan(&o.ID, &o.TermKey, &o.DocumentKey, &o.Begin, &o.End); err != nil {
			return nil, err
		}
		out[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TermFrequency counts the occurrences of a term.
func TermFrequency(ctx context.Context, db DBExecutor, termKey string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM occurrences o JOIN terms t ON t.id = o.term_id
		WHERE t.term_key = ?`, termKey).Scan(&n)
	return n, err
}

// TermDocumentFrequency counts the distinct documents a term occurs in.
func TermDocumentFrequency(ctx context.Context, db DBExecutor, termKey string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT o.document_id) FROM occurrences o JOIN terms t ON t.id = o.term_id
		WHERE t.term_key = ?`, termKey).Scan(&n)
	return n, err
}

// GetDocuments lists every document in insertion order.
func GetDocuments(ctx context.Context, db DBExecutor) ([]Document, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, doc_key, added_at FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var d Document
		var added sql.NullTime
		if err := rows.Scan(&d.ID, &d.Key, &added); err != nil {
			return nil, err
		}
		if added.Valid {
			d.AddedAt = added.Time
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
