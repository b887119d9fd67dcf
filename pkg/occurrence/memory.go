package occurrence

import (
	"context"
	"iter"
	"sort"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	byTerm map[string][]Occurrence
	byDoc  map[string][]Occurrence
	docs   []string
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byTerm: make(map[string][]Occurrence),
		byDoc:  make(map[string][]Occurrence),
	}
}

func (m *Memory) Record(ctx context.Context, termKey, docID string, span Span) error {
	if err := span.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	o := Occurrence{TermKey: termKey, DocumentID: docID, Span: span}
	m.byTerm[termKey] = append(m.byTerm[termKey], o)
	if _, ok := m.byDoc[docID]; !ok {
		m.docs = append(m.docs, docID)
	}
	m.byDoc[docID] = append(m.byDoc[docID], o)
	return nil
}

func (m *Memory) snapshot(src map[string][]Occurrence, key string) ([]Occurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	return append([]Occurrence(nil), src[key]...), nil
}

func (m *Memory) Occurrences(ctx context.Context, termKey string) iter.Seq2[Occurrence, error] {
	return func(yield func(Occurrence, error) bool) {
		occs, err := m.snapshot(m.byTerm, termKey)
		if err != nil {
			yield(Occurrence{}, err)
			return
		}
		for _, o := range occs {
			if err := ctx.Err(); err != nil {
				yield(Occurrence{}, err)
				return
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

func (m *Memory) DocumentOccurrences(ctx context.Context, docID string) iter.Seq2[Occurrence, error] {
	return func(yield func(Occurrence, error) bool) {
		occs, err := m.snapshot(m.byDoc, docID)
		if err != nil {
			yield(Occurrence{}, err)
			return
		}
		sort.SliceStable(occs, func(i, j int) bool { return occs[i].Span.Begin < occs[j].Span.Begin })
		for _, o := range occs {
			if !yield(o, nil) {
				return
			}
		}
	}
}

func (m *Memory) Frequency(ctx context.Context, termKey string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.byTerm[termKey]), nil
}

func (m *Memory) DocumentFrequency(ctx context.Context, termKey string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	seen := make(map[string]struct{})
	for _, o := range m.byTerm[termKey] {
		seen[o.DocumentID] = struct{}{}
	}
	return len(seen), nil
}

func (m *Memory) Documents(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	return append([]string(nil), m.docs...), nil
}

// Flush is a no-op: records are visible as soon as Record returns.
func (m *Memory) Flush(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.closed = true
	m.byTerm = nil
	m.byDoc = nil
	m.docs = nil
	return nil
}
