package variant

import (
	"context"
	"log"

	"github.com/japaniel/termgraph/pkg/termino"
)

// Inferencer lifts single-word variations to the multi-word terms that differ
// only by those words: a graphical, derivational or prefixation link between
// "industry" and "industrial" infers "industry policy" -> "industrial policy"
// when both terms exist and agree on their other words.
type Inferencer struct {
	// Types are the single-word relation types inferences are drawn from.
	Types  []termino.RelationType
	Logger *log.Logger
}

var defaultInferenceTypes = []termino.RelationType{termino.Graphical, termino.Derivation, termino.Prefixation}

func (in *Inferencer) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	types := in.Types
	if len(types) == 0 {
		types = defaultInferenceTypes
	}
	type match struct {
		src, dst *termino.Term
		from     termino.RelationType
	}
	var matches []match
	seen := make(seenPairs)

	for _, r := range t.Relations(types...) {
		a, b := r.From(), r.To()
		if !a.IsSingleWord() || !b.IsSingleWord() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		aLemma, bLemma := a.Words()[0].Lemma, b.Words()[0].Lemma
		for _, src := range t.Lookup(termino.WordLemma, aLemma) {
			if src.Size() < 2 {
				continue
			}
			for _, dst := range replacements(t, src, aLemma, bLemma) {
				if dst != src && seen.claim(src, dst) {
					matches = append(matches, match{src, dst, r.Type()})
				}
			}
		}
	}

	n := 0
	for _, m := range matches {
		props := termino.Properties{
			termino.IsInferred:   true,
			termino.InferredFrom: m.from.String(),
		}
		if _, err := t.AddRelation(termino.Inference, m.src.Key(), m.dst.Key(), props); err != nil {
			return n, err
		}
		n++
	}
	if in.Logger != nil {
		in.Logger.Printf("inferences: %d relations", n)
	}
	return n, nil
}

// replacements returns the terms of the same size as src obtained by swapping
// one occurrence of from for to.
func replacements(t *termino.Terminology, src *termino.Term, from, to string) []*termino.Term {
	var out []*termino.Term
	words := src.Words()
	for i, w := range words {
		if !sameLemma(w.Lemma, from) {
			continue
		}
		swapped := append([]termino.Word(nil), words...)
		swapped[i].Lemma = to
		for _, dst := range termsWithLemma(t, joinLemmas(swapped)) {
			if dst.Size() == src.Size() {
				out = append(out, dst)
			}
		}
	}
	return out
}
