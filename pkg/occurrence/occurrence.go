// Package occurrence records where terms appear in the processed documents.
package occurrence

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrStoreClosed is returned by every operation on a closed store.
	ErrStoreClosed = errors.New("occurrence store closed")
	// ErrInvalidSpan is returned for spans with a negative begin or an end before begin.
	ErrInvalidSpan = errors.New("invalid occurrence span")
)

// Span is a half-open character range [Begin, End) in a document.
type Span struct {
	Begin int
	End   int
}

// Len returns the span length.
func (s Span) Len() int { return s.End - s.Begin }

func (s Span) validate() error {
	if s.Begin < 0 || s.End < s.Begin {
		return fmt.Errorf("[%d,%d): %w", s.Begin, s.End, ErrInvalidSpan)
	}
	return nil
}

// Occurrence is one span of a term in a document.
type Occurrence struct {
	TermKey    string
	DocumentID string
	Span       Span
}

// Store holds the occurrences of every term. Stores are append-only: removing a
// term from a terminology leaves its occurrences in place.
//
// Implementations are safe for concurrent use. The sequences returned by
// Occurrences and DocumentOccurrences are finite and may be ranged over again,
// each pass re-reading the store.
type Store interface {
	Record(ctx context.Context, termKey, docID string, span Span) error
	Occurrences(ctx context.Context, termKey string) iter.Seq2[Occurrence, error]
	Frequency(ctx context.Context, termKey string) (int, error)
	DocumentFrequency(ctx context.Context, termKey string) (int, error)
	Documents(ctx context.Context) ([]string, error)
	DocumentOccurrences(ctx context.Context, docID string) iter.Seq2[Occurrence, error]
	Flush(ctx context.Context) error
	Close() error
}

// Collect drains a sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Occurrence, error]) ([]Occurrence, error) {
	var out []Occurrence
	for o, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}
