// Package ingest feeds documents into a terminology: documents are analyzed
// concurrently and their term occurrences applied in order by a single writer.
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/japaniel/termgraph/pkg/analysis"
	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/termino"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Document is one unit of the corpus. When Sentences is set the text is
// already analyzed and the analyzer is skipped.
type Document struct {
	ID        string
	Text      string
	Sentences []analysis.Sentence
}

// Ingester spots terms in documents and records them in a terminology.
type Ingester struct {
	Terminology *termino.Terminology
	Analyzer    analysis.Analyzer
	Spotter     *analysis.Spotter
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
	// OnProgress is called periodically with the number of processed documents and total documents.
	OnProgress func(current, total int)
	// OnDocument runs on the writer goroutine after each document is applied,
	// with the number of documents processed so far. An error stops ingestion.
	OnDocument func(ctx context.Context, processed int) error

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface

	processed int
}

// NewIngester creates a new Ingester.
func NewIngester(t *termino.Terminology, analyzer analysis.Analyzer, spotter *analysis.Spotter) *Ingester {
	return &Ingester{
		Terminology: t,
		Analyzer:    analyzer,
		Spotter:     spotter,
		Workers:     4,
	}
}

// Processed returns the number of documents applied so far.
func (ig *Ingester) Processed() int { return ig.processed }

// processedDocument holds the result of analyzing a document before it is applied.
type processedDocument struct {
	Index      int
	DocID      string
	Candidates []analysis.Candidate
	Error      error
}

// analyze performs the CPU-heavy part: tokenization and spotting.
func (ig *Ingester) analyze(index int, doc Document) processedDocument {
	res := processedDocument{Index: index, DocID: doc.ID}
	sentences := doc.Sentences
	if sentences == nil && doc.Text != "" {
		if ig.Analyzer == nil {
			res.Error = fmt.Errorf("document %s: no analyzer configured", doc.ID)
			return res
		}
		var err error
		sentences, err = ig.Analyzer.AnalyzeDocument(doc.Text)
		if err != nil {
			res.Error = fmt.Errorf("analyze document %s: %w", doc.ID, err)
			return res
		}
	}
	res.Candidates = ig.Spotter.Spot(sentences)
	return res
}

// apply registers the candidates of one document. It must only run on the
// writer goroutine.
func (ig *Ingester) apply(ctx context.Context, res processedDocument) (int, error) {
	t := ig.Terminology
	store := t.Store()
	n := 0
	for _, c := range res.Candidates {
		key := c.Key()
		term, ok := t.Term(key)
		if !ok {
			term = termino.NewTerm(key, c.Words...)
			if err := t.AddTerm(term); err != nil {
				return n, fmt.Errorf("add term %s: %w", key, err)
			}
		}
		term.AddForm(c.Surface, 1)
		term.Frequency++
		span := occurrence.Span{Begin: c.Begin, End: c.End}
		if err := store.Record(ctx, key, res.DocID, span); err != nil {
			return n, fmt.Errorf("record %s in %s: %w", key, res.DocID, err)
		}
		n++
	}
	ig.processed++
	if ig.OnDocument != nil {
		if err := ig.OnDocument(ctx, ig.processed); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Ingest analyzes documents on a worker pool and applies them in order. It
// returns the number of occurrences recorded.
func (ig *Ingester) Ingest(ctx context.Context, docs []Document) (int, error) {
	total := len(docs)
	if total == 0 {
		return 0, nil
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(ig.Workers, ig.Workers*2)
	} else {
		wp = NewWorkerPool(ig.Workers, ig.Workers*2)
	}
	resultCh := make(chan processedDocument, ig.Workers*2)
	closedResultCh := false
	doneCh := make(chan error, 1)
	var recorded int

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Ensure resources are cleaned up on any return path.
	defer func() {
		wp.Close()
		if !closedResultCh {
			close(resultCh)
		}
	}()

	wp.Start(ctx)

	// Consumer: the only goroutine writing to the terminology.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]processedDocument)
		next := 0
		for res := range resultCh {
			if res.Error != nil {
				cancel()
				doneCh <- res.Error
				return
			}
			buffer[res.Index] = res

			// Apply contiguous finished documents.
			for {
				item, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)
				n, err := ig.apply(ctx, item)
				recorded += n
				if err != nil {
					// Signal producers to stop to prevent them from blocking on resultCh.
					cancel()
					doneCh <- err
					return
				}
				next++
				if ig.OnProgress != nil {
					ig.OnProgress(next, total)
				}
			}
		}
		if next < total {
			doneCh <- ctx.Err()
			return
		}
		doneCh <- nil
	}()

	// Producer loop: submit analysis jobs.
	var submitErr error
Loop:
	for i, doc := range docs {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		idx, d := i, doc
		job := func(ctx context.Context) error {
			res := ig.analyze(idx, d)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		}

		// Submit job to the worker pool but remain responsive to context cancellation.
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if err == ctx.Err() || err == ErrPoolClosed {
				break Loop
			}
			submitErr = fmt.Errorf("submit document %s: %w", doc.ID, err)
			cancel()
			break Loop
		}
	}

	// Wait for the workers, then tell the consumer no more results will arrive.
	wp.Close()
	close(resultCh)
	closedResultCh = true

	consumerErr := <-doneCh
	if submitErr != nil {
		return recorded, submitErr
	}
	if consumerErr != nil {
		return recorded, consumerErr
	}
	if ig.Logger != nil {
		ig.Logger.Printf("ingested %d documents, %d occurrences", total, recorded)
	}
	return recorded, nil
}
