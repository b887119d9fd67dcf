package occurrence

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/japaniel/termgraph/pkg/db"
)

// SQLOptions tunes a SQL store. Zero values pick the defaults.
type SQLOptions struct {
	BatchSize     int
	FlushInterval time.Duration
	CacheSize     int
	PageSize      int
	Logger        *log.Logger
}

func (o SQLOptions) withDefaults() SQLOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 4096
	}
	if o.PageSize <= 0 {
		o.PageSize = 200
	}
	return o
}

// SQL is a Store backed by a database/sql connection (sqlite3 or pgx). Writes are
// batched in transactions; every read flushes pending writes first so a reader
// always sees its own records. Occurrence rows are fetched page by page through
// an LRU cache keyed by row id.
type SQL struct {
	conn    *sql.DB
	dialect db.Dialect
	writer  *BatchWriter
	cache   *lru.Cache[int64, Occurrence]
	opts    SQLOptions

	mu     sync.RWMutex
	closed bool
}

// OpenSQL connects to driver/dsn, runs the schema migrations and returns a store
// owning the connection.
func OpenSQL(ctx context.Context, driver, dsn string, opts SQLOptions) (*SQL, error) {
	conn, dialect, err := db.Open(ctx, driver, dsn, opts.Logger)
	if err != nil {
		return nil, err
	}
	s, err := NewSQL(conn, dialect, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an already migrated connection. Close closes the connection.
func NewSQL(conn *sql.DB, dialect db.Dialect, opts SQLOptions) (*SQL, error) {
	opts = opts.withDefaults()
	cache, err := lru.New[int64, Occurrence](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("occurrence cache: %w", err)
	}
	s := &SQL{
		conn:    conn,
		dialect: dialect,
		writer:  NewBatchWriter(conn, opts.BatchSize, opts.FlushInterval),
		cache:   cache,
		opts:    opts,
	}
	if opts.Logger != nil {
		s.writer.OnError = func(err error) {
			opts.Logger.Printf("occurrence store: %v", err)
		}
	}
	return s, nil
}

func (s *SQL) Record(ctx context.Context, termKey, docID string, span Span) error {
	if err := span.validate(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.writer.Submit(func(ctx context.Context, tx *sql.Tx) error {
		return db.InsertOccurrence(ctx, db.Bind(tx, s.dialect), termKey, docID, span.Begin, span.End)
	})
}

// prepareRead flushes pending writes and returns the executor for reads. The read
// lock is held on success and must be released by the caller.
func (s *SQL) prepareRead(ctx context.Context) (db.DBExecutor, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	if err := s.writer.Flush(ctx); err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("flush occurrences: %w", err)
	}
	return db.Bind(s.conn, s.dialect), nil
}

func (s *SQL) Frequency(ctx context.Context, termKey string) (int, error) {
	ex, err := s.prepareRead(ctx)
	if err != nil {
		return 0, err
	}
	defer s.mu.RUnlock()
	return db.TermFrequency(ctx, ex, termKey)
}

func (s *SQL) DocumentFrequency(ctx context.Context, termKey string) (int, error) {
	ex, err := s.prepareRead(ctx)
	if err != nil {
		return 0, err
	}
	defer s.mu.RUnlock()
	return db.TermDocumentFrequency(ctx, ex, termKey)
}

func (s *SQL) Documents(ctx context.Context) ([]string, error) {
	ex, err := s.prepareRead(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()
	docs, err := db.GetDocuments(ctx, ex)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Key
	}
	return out, nil
}

func (s *SQL) Occurrences(ctx context.Context, termKey string) iter.Seq2[Occurrence, error] {
	return s.scan(ctx, func(ex db.DBExecutor) ([]int64, error) {
		return db.OccurrenceIDsByTerm(ctx, ex, termKey)
	})
}

func (s *SQL) DocumentOccurrences(ctx context.Context, docID string) iter.Seq2[Occurrence, error] {
	return s.scan(ctx, func(ex db.DBExecutor) ([]int64, error) {
		return db.OccurrenceIDsByDocument(ctx, ex, docID)
	})
}

// scan lists ids up front, with the rows closed before anything is yielded, then
// resolves them page by page. The consumer may stop at any point.
func (s *SQL) scan(ctx context.Context, list func(db.DBExecutor) ([]int64, error)) iter.Seq2[Occurrence, error] {
	return func(yield func(Occurrence, error) bool) {
		ex, err := s.prepareRead(ctx)
		if err != nil {
			yield(Occurrence{}, err)
			return
		}
		ids, err := list(ex)
		s.mu.RUnlock()
		if err != nil {
			yield(Occurrence{}, err)
			return
		}
		for start := 0; start < len(ids); start += s.opts.PageSize {
			end := min(start+s.opts.PageSize, len(ids))
			page, err := s.fetch(ctx, ids[start:end])
			if err != nil {
				yield(Occurrence{}, err)
				return
			}
			for _, o := range page {
				if !yield(o, nil) {
					return
				}
			}
		}
	}
}

// fetch resolves ids in order, reading cache misses in one query.
func (s *SQL) fetch(ctx context.Context, ids []int64) ([]Occurrence, error) {
	var misses []int64
	for _, id := range ids {
		if _, ok := s.cache.Get(id); !ok {
			misses = append(misses, id)
		}
	}
	var rows map[int64]db.Occurrence
	if len(misses) > 0 {
		s.mu.RLock()
		if s.closed {
			s.mu.RUnlock()
			return nil, ErrStoreClosed
		}
		var err error
		rows, err = db.GetOccurrences(ctx, db.Bind(s.conn, s.dialect), misses)
		s.mu.RUnlock()
		if err != nil {
			return nil, err
		}
	}
	out := make([]Occurrence, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.cache.Get(id); ok {
			out = append(out, o)
			continue
		}
		row, ok := rows[id]
		if !ok {
			return nil, fmt.Errorf("occurrence %d vanished", id)
		}
		o := Occurrence{TermKey: row.TermKey, DocumentID: row.DocumentKey, Span: Span{Begin: row.Begin, End: row.End}}
		s.cache.Add(id, o)
		out = append(out, o)
	}
	return out, nil
}

func (s *SQL) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.writer.Flush(ctx)
}

// Close commits pending writes and closes the connection.
func (s *SQL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	werr := s.writer.Close()
	cerr := s.conn.Close()
	if werr != nil {
		return fmt.Errorf("close occurrence writer: %w", werr)
	}
	return cerr
}
