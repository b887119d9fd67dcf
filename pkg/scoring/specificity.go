package scoring

import (
	"math"

	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

// DefaultReferenceFrequency is used for lemmas missing from the reference table.
const DefaultReferenceFrequency = 1.0

// Specificity weighs terms against a general-language reference corpus.
//
// WRLog is the base-10 log of the weirdness ratio, the relative frequency in
// the corpus over the relative frequency in the reference. Specificity is the
// signed log-likelihood of the same contingency table, divided by the largest
// magnitude observed so that it falls in [-1, 1]. Terms that were never seen
// get zero for both.
type Specificity struct {
	General *resource.GeneralLanguage
	// DefaultFrequency replaces the reference frequency of unknown lemmas.
	DefaultFrequency float64
}

func (s *Specificity) reference(lemma string) float64 {
	if s.General != nil {
		if f, ok := s.General.Frequency(termino.NormalizeLemma(lemma)); ok && f > 0 {
			return f
		}
	}
	if s.DefaultFrequency > 0 {
		return s.DefaultFrequency
	}
	return DefaultReferenceFrequency
}

// Run scores every term of t. Frequencies must have been computed before.
func (s *Specificity) Run(t *termino.Terminology) {
	terms := t.Terms()
	var corpus float64
	for _, term := range terms {
		if term.IsSingleWord() {
			corpus += float64(term.Frequency)
		}
	}
	if corpus == 0 {
		for _, term := range terms {
			corpus += float64(term.Frequency)
		}
	}
	var general float64
	if s.General != nil {
		general = s.General.Total()
	}

	var maxLL float64
	for _, term := range terms {
		f := float64(term.Frequency)
		if f == 0 || corpus == 0 {
			term.WRLog, term.Specificity = 0, 0
			continue
		}
		g := s.reference(term.Lemma())
		total := general
		if total < g {
			total = g
		}
		term.WRLog = math.Log10((f / corpus) / (g / total))
		term.Specificity = signedLogLikelihood(f, g, corpus, total)
		maxLL = math.Max(maxLL, math.Abs(term.Specificity))
	}
	if maxLL == 0 {
		return
	}
	for _, term := range terms {
		term.Specificity /= maxLL
	}
}

// signedLogLikelihood is Dunning's G2 for a word seen a times in a corpus of c
// words and b times in a reference of d words. It is negative when the word is
// relatively rarer in the corpus.
func signedLogLikelihood(a, b, c, d float64) float64 {
	e1 := c * (a + b) / (c + d)
	e2 := d * (a + b) / (c + d)
	ll := 2 * (xlogy(a, e1) + xlogy(b, e2))
	if a/c < b/d {
		return -ll
	}
	return ll
}

// xlogy returns x*ln(x/y), zero when x is zero.
func xlogy(x, y float64) float64 {
	if x == 0 || y == 0 {
		return 0
	}
	return x * math.Log(x/y)
}
