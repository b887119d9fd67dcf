package variant

import (
	"context"
	"log"

	"github.com/agext/levenshtein"

	"github.com/japaniel/termgraph/pkg/termino"
)

// DefaultGraphicalThreshold is the similarity above which two terms are
// considered spelling variants.
const DefaultGraphicalThreshold = 0.9

// GraphicalGatherer links terms whose normalized lemmas are nearly identical.
type GraphicalGatherer struct {
	SimilarityThreshold float64
	// Symmetric adds the reverse edge for every pair.
	Symmetric bool
	Logger    *log.Logger
}

func (g *GraphicalGatherer) threshold() float64 {
	if g.SimilarityThreshold <= 0 {
		return DefaultGraphicalThreshold
	}
	return g.SimilarityThreshold
}

type graphicalBucket struct {
	size  int
	first rune
}

// Run compares terms of the same size whose normalized lemmas share the first
// rune. Edges go from the earlier registered term to the later one.
func (g *GraphicalGatherer) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	type entry struct {
		term  *termino.Term
		lemma string
	}
	buckets := make(map[graphicalBucket][]entry)
	var order []graphicalBucket
	for _, term := range t.Terms() {
		lemma := termino.NormalizeLemma(term.Lemma())
		if lemma == "" {
			continue
		}
		b := graphicalBucket{size: term.Size(), first: []rune(lemma)[0]}
		if _, ok := buckets[b]; !ok {
			order = append(order, b)
		}
		buckets[b] = append(buckets[b], entry{term, lemma})
	}

	threshold := g.threshold()
	var pairs [][2]*termino.Term
	var sims []float64
	for _, b := range order {
		entries := buckets[b]
		for i := 0; i < len(entries); i++ {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			for j := i + 1; j < len(entries); j++ {
				sim := levenshtein.Similarity(entries[i].lemma, entries[j].lemma, nil)
				if sim >= threshold {
					pairs = append(pairs, [2]*termino.Term{entries[i].term, entries[j].term})
					sims = append(sims, sim)
				}
			}
		}
	}

	n := 0
	for i, p := range pairs {
		props := termino.Properties{termino.IsGraphical: true, termino.Similarity: sims[i]}
		if _, err := t.AddRelation(termino.Graphical, p[0].Key(), p[1].Key(), props); err != nil {
			return n, err
		}
		n++
		if g.Symmetric {
			if _, err := t.AddRelation(termino.Graphical, p[1].Key(), p[0].Key(), props); err != nil {
				return n, err
			}
			n++
		}
	}
	if g.Logger != nil {
		g.Logger.Printf("graphical variants: %d relations", n)
	}
	return n, nil
}
