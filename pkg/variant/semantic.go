package variant

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

// SemanticAligner links terms that differ only through synonymy: same-pattern
// terms where exactly one word is replaced by a synonym, and rule matches whose
// constraints hold only when synonyms count as equal.
type SemanticAligner struct {
	Synonyms resource.Synonyms
	Rules    []resource.Rule
	Logger   *log.Logger
}

func (a *SemanticAligner) synonymsOf(lemma string) []string {
	set := a.Synonyms[strings.ToLower(lemma)]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (a *SemanticAligner) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	if len(a.Synonyms) == 0 {
		return 0, nil
	}
	type match struct {
		src, dst *termino.Term
		props    termino.Properties
	}
	var matches []match
	seen := make(seenPairs)

	for _, src := range t.Terms() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		words := src.Words()
		for i, w := range words {
			for _, syn := range a.synonymsOf(w.Lemma) {
				swapped := append([]termino.Word(nil), words...)
				swapped[i].Lemma = syn
				for _, dst := range termsWithLemma(t, joinLemmas(swapped)) {
					if dst == src || dst.Pattern() != src.Pattern() || !seen.claim(src, dst) {
						continue
					}
					matches = append(matches, match{src, dst, termino.Properties{
						termino.IsSemantic: true,
						termino.Synonym:    fmt.Sprintf("%s/%s", w.Lemma, syn),
					}})
				}
			}
		}
	}

	eq := func(x, y string) bool { return a.Synonyms.Are(x, y) }
	for _, r := range a.Rules {
		for _, src := range t.Lookup(termino.PatternIndex, r.Source) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			for _, dst := range ruleCandidates(t, r, src, a.synonymsOf) {
				if dst == src {
					continue
				}
				// Exact matches belong to the syntactic gatherer.
				if ok, exact := matchRule(r, src, dst, eq); !ok || exact || !seen.claim(src, dst) {
					continue
				}
				matches = append(matches, match{src, dst, termino.Properties{
					termino.IsSemantic:    true,
					termino.VariationRule: r.Name,
					termino.VariationKind: string(r.Kind),
				}})
			}
		}
	}

	n := 0
	for _, m := range matches {
		if _, err := t.AddRelation(termino.Semantic, m.src.Key(), m.dst.Key(), m.props); err != nil {
			return n, err
		}
		n++
	}
	if a.Logger != nil {
		a.Logger.Printf("semantic variants: %d relations", n)
	}
	return n, nil
}
