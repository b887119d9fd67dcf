// Package variant holds the passes that link terms to their variants. Every
// pass snapshots its candidate terms before writing, adds relations only, and
// returns the number of relations it created.
package variant

import (
	"strings"

	"github.com/japaniel/termgraph/pkg/termino"
)

// pairKey identifies an ordered pair of terms within one pass.
type pairKey struct{ from, to string }

// seenPairs keeps the first relation per ordered pair within a pass.
type seenPairs map[pairKey]bool

func (s seenPairs) claim(from, to *termino.Term) bool {
	k := pairKey{from.Key(), to.Key()}
	if s[k] {
		return false
	}
	s[k] = true
	return true
}

// termsWithLemma returns the terms whose normalized lemma string is lemma.
func termsWithLemma(t *termino.Terminology, lemma string) []*termino.Term {
	return t.Lookup(termino.LemmaLowerCase, termino.NormalizeLemma(lemma))
}

func joinLemmas(words []termino.Word) string {
	lemmas := make([]string, len(words))
	for i, w := range words {
		lemmas[i] = w.Lemma
	}
	return strings.Join(lemmas, " ")
}

func sameLemma(a, b string) bool {
	return termino.NormalizeLemma(a) == termino.NormalizeLemma(b)
}
