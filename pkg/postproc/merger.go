package postproc

import (
	"context"
	"fmt"
	"log"

	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/termino"
)

// Merger folds variants that add nothing to their base: graphical variants at
// least MinSimilarity alike, and extensions whose extra words all carry an
// ignorable label (determiners, prepositions). The base takes over the
// frequency and the surface forms of the folded term, which is then removed.
// Its document frequency becomes the number of distinct documents holding
// either term in the occurrence store.
type Merger struct {
	MinSimilarity   float64
	IgnorableLabels []string
	Logger          *log.Logger
}

// DefaultMerger folds case and accent variants plus determiner and preposition extensions.
func DefaultMerger() *Merger {
	return &Merger{MinSimilarity: 1, IgnorableLabels: []string{"D", "P"}}
}

func (m *Merger) ignorable(words []termino.Word) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		found := false
		for _, l := range m.IgnorableLabels {
			if w.Label == l {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *Merger) folds(r *termino.Relation) bool {
	switch r.Type() {
	case termino.Graphical:
		sim, ok := r.Float(termino.Similarity)
		return ok && sim >= m.MinSimilarity
	case termino.Extension:
		extra, ok := termino.SubsequenceRemainder(r.From().Words(), r.To().Words())
		return ok && m.ignorable(extra)
	}
	return false
}

// addDocuments adds the documents of a term to docs.
func addDocuments(ctx context.Context, store occurrence.Store, key string, docs map[string]bool) error {
	for o, err := range store.Occurrences(ctx, key) {
		if err != nil {
			return fmt.Errorf("documents of %s: %w", key, err)
		}
		docs[o.DocumentID] = true
	}
	return nil
}

// Run returns the number of folded terms.
func (m *Merger) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	store := t.Store()
	n := 0
	for _, base := range t.Terms() {
		if !t.Contains(base.Key()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var docs map[string]bool
		for _, r := range t.RelationsFrom(base.Key(), termino.Graphical, termino.Extension) {
			variant := r.To()
			if variant == base || !t.Contains(variant.Key()) || !m.folds(r) {
				continue
			}
			if store != nil {
				if docs == nil {
					docs = make(map[string]bool)
					if err := addDocuments(ctx, store, base.Key(), docs); err != nil {
						return n, err
					}
				}
				if err := addDocuments(ctx, store, variant.Key(), docs); err != nil {
					return n, err
				}
				base.DocumentFrequency = max(base.DocumentFrequency, len(docs))
			}
			base.Frequency += variant.Frequency
			for form, k := range variant.Forms {
				base.AddForm(form, k)
			}
			if _, err := t.RemoveTerm(variant.Key()); err != nil {
				return n, fmt.Errorf("fold %s into %s: %w", variant.Key(), base.Key(), err)
			}
			n++
		}
	}
	if m.Logger != nil {
		m.Logger.Printf("merged %d variants", n)
	}
	return n, nil
}
