package variant

import (
	"context"
	"log"

	"github.com/japaniel/termgraph/pkg/termino"
)

// ExtensionDetector links a base term to every longer term whose lemma sequence
// contains the base lemmas in order.
type ExtensionDetector struct {
	Logger *log.Logger
}

func (d *ExtensionDetector) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	type pair struct{ base, ext *termino.Term }
	var pairs []pair
	seen := make(seenPairs)
	for _, ext := range t.Terms() {
		if ext.Size() < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		// Any base shares at least the lemma of its first word with the extension.
		for _, w := range uniqueLemmas(ext.Words()) {
			for _, base := range t.Lookup(termino.WordLemma, w) {
				if base.Size() >= ext.Size() || base.Words()[0].Lemma != w {
					continue
				}
				if _, ok := termino.SubsequenceRemainder(base.Words(), ext.Words()); !ok {
					continue
				}
				if seen.claim(base, ext) {
					pairs = append(pairs, pair{base, ext})
				}
			}
		}
	}

	n := 0
	for _, p := range pairs {
		props := termino.Properties{termino.IsExtension: true}
		if _, err := t.AddRelation(termino.Extension, p.base.Key(), p.ext.Key(), props); err != nil {
			return n, err
		}
		n++
	}
	if d.Logger != nil {
		d.Logger.Printf("extensions: %d relations", n)
	}
	return n, nil
}

func uniqueLemmas(words []termino.Word) []string {
	var out []string
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if !seen[w.Lemma] {
			seen[w.Lemma] = true
			out = append(out, w.Lemma)
		}
	}
	return out
}
