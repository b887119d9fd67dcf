package variant

import (
	"context"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

// PrefixationDetector links a single word to the prefixed words built on it,
// e.g. "thermal" -> "geothermal". The prefix comes from the morphology of the
// prefixed word when known, otherwise from the prefix list.
type PrefixationDetector struct {
	Prefixes []string
	Logger   *log.Logger
}

func (d *PrefixationDetector) prefixes() []string {
	out := append([]string(nil), d.Prefixes...)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func (d *PrefixationDetector) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	type match struct {
		base, word *termino.Term
		prefix     string
	}
	var matches []match
	seen := make(seenPairs)
	prefixes := d.prefixes()

	for _, w := range t.Terms() {
		if !w.IsSingleWord() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		lemma := termino.NormalizeLemma(w.Lemma())
		candidates := prefixes
		if m := w.Morphology; m.IsCompound() && m.Components[0].Kind == termino.Prefix {
			candidates = append([]string{termino.NormalizeLemma(m.Components[0].Substring)}, prefixes...)
		}
		for _, p := range candidates {
			rest, ok := strings.CutPrefix(lemma, p)
			if !ok || utf8.RuneCountInString(rest) < 2 {
				continue
			}
			rest = strings.TrimPrefix(rest, "-")
			for _, base := range termsWithLemma(t, rest) {
				if base == w || !base.IsSingleWord() || !seen.claim(base, w) {
					continue
				}
				matches = append(matches, match{base, w, p})
			}
		}
	}

	n := 0
	for _, m := range matches {
		props := termino.Properties{
			termino.IsMorphological: true,
			termino.IsPrefixation:   true,
			termino.PrefixForm:      m.prefix,
		}
		if _, err := t.AddRelation(termino.Prefixation, m.base.Key(), m.word.Key(), props); err != nil {
			return n, err
		}
		n++
	}
	if d.Logger != nil {
		d.Logger.Printf("prefixations: %d relations", n)
	}
	return n, nil
}

// DerivationDetector links a base word to the words derived from it by suffix
// substitution, e.g. "industry" (N) -> "industrial" (A).
type DerivationDetector struct {
	Rules  []resource.DerivationRule
	Logger *log.Logger
}

func (d *DerivationDetector) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	type match struct {
		base, derivate *termino.Term
		typ            string
	}
	var matches []match
	seen := make(seenPairs)

	for _, w := range t.Terms() {
		if !w.IsSingleWord() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		word := w.Words()[0]
		for _, r := range d.Rules {
			if r.DerivateLabel != word.Label {
				continue
			}
			baseLemma, ok := r.Base(termino.NormalizeLemma(word.Lemma))
			if !ok {
				continue
			}
			for _, base := range termsWithLemma(t, baseLemma) {
				if base == w || !base.IsSingleWord() || base.Words()[0].Label != r.BaseLabel {
					continue
				}
				if seen.claim(base, w) {
					matches = append(matches, match{base, w, r.Type})
				}
			}
		}
	}

	n := 0
	for _, m := range matches {
		props := termino.Properties{
			termino.IsMorphological: true,
			termino.IsDerivation:    true,
			termino.DerivationType:  m.typ,
		}
		if _, err := t.AddRelation(termino.Derivation, m.base.Key(), m.derivate.Key(), props); err != nil {
			return n, err
		}
		n++
	}
	if d.Logger != nil {
		d.Logger.Printf("derivations: %d relations", n)
	}
	return n, nil
}
