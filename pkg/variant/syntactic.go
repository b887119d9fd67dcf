package variant

import (
	"context"
	"log"

	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

// lemmaEq decides whether two word lemmas match under a rule constraint.
type lemmaEq func(a, b string) bool

// matchRule checks the rule patterns and constraints for a pair of terms.
// exact reports whether every constraint held by plain lemma equality.
func matchRule(r resource.Rule, src, dst *termino.Term, eq lemmaEq) (ok, exact bool) {
	if src.Pattern() != r.Source || dst.Pattern() != r.Target {
		return false, false
	}
	sw, dw := src.Words(), dst.Words()
	exact = true
	for _, c := range r.Constraints {
		a, b := sw[c.Source-1].Lemma, dw[c.Target-1].Lemma
		if sameLemma(a, b) {
			continue
		}
		if eq == nil || !eq(a, b) {
			return false, false
		}
		exact = false
	}
	return true, exact
}

// ruleCandidates lists the terms with the target pattern that share a word with
// src under the first constraint of the rule (all target-pattern terms when the
// rule has no constraint).
func ruleCandidates(t *termino.Terminology, r resource.Rule, src *termino.Term, alternatives func(string) []string) []*termino.Term {
	if len(r.Constraints) == 0 {
		return t.Lookup(termino.PatternIndex, r.Target)
	}
	c := r.Constraints[0]
	lemma := src.Words()[c.Source-1].Lemma
	lemmas := []string{lemma}
	if alternatives != nil {
		lemmas = append(lemmas, alternatives(lemma)...)
	}
	var out []*termino.Term
	seen := make(map[string]bool)
	for _, l := range lemmas {
		for _, cand := range t.Lookup(termino.WordLemma, l) {
			if seen[cand.Key()] || cand.Pattern() != r.Target || cand.Size() < c.Target {
				continue
			}
			seen[cand.Key()] = true
			out = append(out, cand)
		}
	}
	return out
}

// SyntacticGatherer applies an ordered rule set to pairs of terms. For a given
// pair only the first matching rule creates an edge.
type SyntacticGatherer struct {
	Rules  []resource.Rule
	Logger *log.Logger
}

func (g *SyntacticGatherer) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	type match struct {
		src, dst *termino.Term
		rule     resource.Rule
	}
	var matches []match
	seen := make(seenPairs)
	for _, r := range g.Rules {
		for _, src := range t.Lookup(termino.PatternIndex, r.Source) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			for _, dst := range ruleCandidates(t, r, src, nil) {
				if dst == src {
					continue
				}
				if ok, _ := matchRule(r, src, dst, nil); ok && seen.claim(src, dst) {
					matches = append(matches, match{src, dst, r})
				}
			}
		}
	}

	n := 0
	for _, m := range matches {
		props := termino.Properties{
			termino.IsSyntagmatic: true,
			termino.VariationRule: m.rule.Name,
			termino.VariationKind: string(m.rule.Kind),
		}
		if _, err := t.AddRelation(termino.Syntactic, m.src.Key(), m.dst.Key(), props); err != nil {
			return n, err
		}
		n++
	}
	if g.Logger != nil {
		g.Logger.Printf("syntactic variants: %d relations", n)
	}
	return n, nil
}
