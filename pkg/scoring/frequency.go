// Package scoring computes term statistics: frequencies from the occurrence
// store, specificity against a general-language reference and context vectors.
package scoring

import (
	"context"
	"fmt"

	"github.com/japaniel/termgraph/pkg/termino"
)

// ComputeFrequencies sets Frequency and DocumentFrequency of every term from
// the occurrence store of the terminology.
func ComputeFrequencies(ctx context.Context, t *termino.Terminology) error {
	store := t.Store()
	if err := store.Flush(ctx); err != nil {
		return fmt.Errorf("flush occurrences: %w", err)
	}
	for _, term := range t.Terms() {
		f, err := store.Frequency(ctx, term.Key())
		if err != nil {
			return fmt.Errorf("frequency of %s: %w", term.Key(), err)
		}
		df, err := store.DocumentFrequency(ctx, term.Key())
		if err != nil {
			return fmt.Errorf("document frequency of %s: %w", term.Key(), err)
		}
		term.Frequency, term.DocumentFrequency = f, df
	}
	return nil
}
