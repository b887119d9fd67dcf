package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/japaniel/termgraph/pkg/analysis"
	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/termino"
)

func newTestIngester(t testing.TB, store occurrence.Store) *Ingester {
	t.Helper()
	tt := termino.New("ingest", "en", store)
	return NewIngester(tt, &analysis.Simple{}, analysis.NewSpotter([]string{"N", "N N"}, nil))
}

func numberedDocs(n int) []Document {
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = Document{ID: fmt.Sprintf("doc-%02d", i), Text: fmt.Sprintf("term%d.", i)}
	}
	return docs
}

func TestIngestAppliesDocumentsInOrder(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())
	ingester.Workers = 4
	var seen []int
	ingester.OnDocument = func(ctx context.Context, processed int) error {
		seen = append(seen, processed)
		return nil
	}

	count, err := ingester.Ingest(context.Background(), numberedDocs(20))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if count != 20 {
		t.Errorf("Expected 20 occurrences, got %d", count)
	}
	terms := ingester.Terminology.Terms()
	if len(terms) != 20 {
		t.Fatalf("Expected 20 terms, got %d", len(terms))
	}
	for i, term := range terms {
		if want := fmt.Sprintf("n: term%d", i); term.Key() != want {
			t.Fatalf("term %d: got %s, want %s (documents applied out of order)", i, term.Key(), want)
		}
	}
	for i, p := range seen {
		if p != i+1 {
			t.Fatalf("OnDocument call %d got processed=%d", i, p)
		}
	}
	if ingester.Processed() != 20 {
		t.Errorf("Expected 20 processed documents, got %d", ingester.Processed())
	}
}

func TestIngestRecordsOccurrences(t *testing.T) {
	store := occurrence.NewMemory()
	ingester := newTestIngester(t, store)
	docs := []Document{
		{ID: "a", Text: "Wind turbines. Wind turbine blades."},
		{ID: "b", Sentences: []analysis.Sentence{{Tokens: []analysis.Token{
			{Surface: "wind", Lemma: "wind", Label: "N", Begin: 0, End: 4},
			{Surface: "turbine", Lemma: "turbine", Label: "N", Begin: 5, End: 12},
		}}}},
	}
	if _, err := ingester.Ingest(context.Background(), docs); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	wt, ok := ingester.Terminology.Term("nn: wind turbine")
	if !ok {
		t.Fatal("Expected term 'nn: wind turbine'")
	}
	if wt.Frequency != 3 {
		t.Errorf("Expected frequency 3, got %d", wt.Frequency)
	}
	if wt.Forms["Wind turbines"] != 1 || wt.Forms["wind turbine"] != 1 {
		t.Errorf("unexpected forms %v", wt.Forms)
	}
	df, err := store.DocumentFrequency(context.Background(), wt.Key())
	if err != nil || df != 2 {
		t.Errorf("Expected document frequency 2, got %d (%v)", df, err)
	}
	occs, err := occurrence.Collect(store.Occurrences(context.Background(), wt.Key()))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if occs[0].DocumentID != "a" || occs[0].Span != (occurrence.Span{Begin: 0, End: 13}) {
		t.Errorf("unexpected first occurrence %+v", occs[0])
	}
}

func TestIngestContextCancel(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())

	// Create a context that is ALREADY canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := ingester.Ingest(ctx, numberedDocs(100))
	if count != 0 {
		t.Errorf("Expected 0 occurrences with cancelled context, got %d", count)
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

type failingAnalyzer struct{}

func (failingAnalyzer) AnalyzeDocument(string) ([]analysis.Sentence, error) {
	return nil, errors.New("analyzer down")
}

func TestIngestAnalyzerError(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())
	ingester.Analyzer = failingAnalyzer{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := ingester.Ingest(ctx, numberedDocs(30)); err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected analyzer error, got %v", err)
	}
}

func TestIngestOnDocumentErrorStops(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())
	stop := errors.New("stop here")
	ingester.OnDocument = func(ctx context.Context, processed int) error {
		if processed == 3 {
			return stop
		}
		return nil
	}
	if _, err := ingester.Ingest(context.Background(), numberedDocs(50)); !errors.Is(err, stop) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if ingester.Processed() != 3 {
		t.Errorf("expected ingestion to stop after 3 documents, got %d", ingester.Processed())
	}
}

// failingPool always returns an error on Submit to simulate producer error.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() {}

func TestIngestHandlesSubmitError(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())
	// Inject failing pool so first Submit() returns an error
	ingester.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }

	// Run ingest and expect it to return quickly with the submit error
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ingester.Ingest(ctx, numberedDocs(10))
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected submit error, got %v", err)
	}
}

func TestStreamProcessesEveryDocument(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())
	s := ingester.Stream(context.Background())
	if s.ID == "" {
		t.Fatal("expected a stream id")
	}
	for _, doc := range numberedDocs(25) {
		if err := s.Provide(context.Background(), doc); err != nil {
			t.Fatalf("Provide: %v", err)
		}
	}
	s.Close()
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if s.Recorded() != 25 || ingester.Terminology.Size() != 25 {
		t.Errorf("expected 25 occurrences and terms, got %d/%d", s.Recorded(), ingester.Terminology.Size())
	}
	if err := s.Provide(context.Background(), Document{ID: "late"}); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("expected ErrStreamClosed, got %v", err)
	}
}

// gatedAnalyzer blocks every analysis until the gate is closed.
type gatedAnalyzer struct {
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (a *gatedAnalyzer) AnalyzeDocument(text string) ([]analysis.Sentence, error) {
	a.once.Do(func() { close(a.started) })
	<-a.gate
	return (&analysis.Simple{}).AnalyzeDocument(text)
}

func TestStreamDropsDocumentOnCancelledProvide(t *testing.T) {
	ingester := newTestIngester(t, occurrence.NewMemory())
	a := &gatedAnalyzer{gate: make(chan struct{}), started: make(chan struct{})}
	ingester.Analyzer = a
	s := ingester.Stream(context.Background())

	docs := numberedDocs(StreamCapacity + 2)
	// The consumer holds the first document; the next ones fill the buffer.
	if err := s.Provide(context.Background(), docs[0]); err != nil {
		t.Fatalf("Provide: %v", err)
	}
	<-a.started
	for _, doc := range docs[1 : StreamCapacity+1] {
		if err := s.Provide(context.Background(), doc); err != nil {
			t.Fatalf("Provide: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Provide(ctx, docs[StreamCapacity+1]); err != nil {
		t.Fatalf("a cancelled Provide must not fail the producer: %v", err)
	}
	if s.Dropped() != 1 {
		t.Fatalf("expected 1 dropped document, got %d", s.Dropped())
	}

	close(a.gate)
	s.Close()
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := ingester.Terminology.Size(); got != StreamCapacity+1 {
		t.Errorf("expected %d terms, got %d", StreamCapacity+1, got)
	}
}
