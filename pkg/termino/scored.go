package termino

import "math"

// ScoredVariation is a read-only view of one outgoing variation of a base term.
type ScoredVariation struct {
	Relation *Relation
	Variant  *Term
	// ExtensionAffix is the registered term made of the words an extension adds to its
	// base, when there is one.
	ExtensionAffix *Term
}

// Frequency is the variant frequency.
func (v ScoredVariation) Frequency() int { return v.Variant.Frequency }

// ScoredTerm is a flattened projection of a base term and its variations, built for
// reporting. Aggregates are computed on first access and cached until Reset.
type ScoredTerm struct {
	Term       *Term
	Variations []ScoredVariation

	maxFrequency  *int
	maxAffixWRLog *float64
}

// MaxVariationFrequency returns the highest variant frequency; ok is false when the
// term has no variation.
func (s *ScoredTerm) MaxVariationFrequency() (int, bool) {
	if len(s.Variations) == 0 {
		return 0, false
	}
	if s.maxFrequency == nil {
		max := math.MinInt
		for _, v := range s.Variations {
			if f := v.Frequency(); f > max {
				max = f
			}
		}
		s.maxFrequency = &max
	}
	return *s.maxFrequency, true
}

// MaxExtensionAffixWRLog returns the highest WRLog among extension affixes; ok is false
// when no variation has an affix term.
func (s *ScoredTerm) MaxExtensionAffixWRLog() (float64, bool) {
	if s.maxAffixWRLog == nil {
		max := math.Inf(-1)
		for _, v := range s.Variations {
			if v.ExtensionAffix != nil && v.ExtensionAffix.WRLog > max {
				max = v.ExtensionAffix.WRLog
			}
		}
		s.maxAffixWRLog = &max
	}
	if math.IsInf(*s.maxAffixWRLog, -1) {
		return 0, false
	}
	return *s.maxAffixWRLog, true
}

// Reset drops the cached aggregates.
func (s *ScoredTerm) Reset() {
	s.maxFrequency = nil
	s.maxAffixWRLog = nil
}

// Project builds the scored view of every term that has outgoing relations of the
// given types (all types when none is given). Terms without relations are included
// with an empty variation list.
func Project(t *Terminology, types ...RelationType) []*ScoredTerm {
	terms := t.Terms()
	out := make([]*ScoredTerm, 0, len(terms))
	for _, term := range terms {
		st := &ScoredTerm{Term: term}
		for _, r := range t.RelationsFrom(term.key, types...) {
			v := ScoredVariation{Relation: r, Variant: r.to}
			if r.typ == Extension {
				v.ExtensionAffix = t.extensionAffix(term, r.to)
			}
			st.Variations = append(st.Variations, v)
		}
		out = append(out, st)
	}
	return out
}

// extensionAffix returns the term made of the words of ext that are not matched by base.
func (t *Terminology) extensionAffix(base, ext *Term) *Term {
	extra, ok := SubsequenceRemainder(base.words, ext.words)
	if !ok || len(extra) == 0 {
		return nil
	}
	affix, _ := t.Term(GroupingKey(extra...))
	return affix
}

// SubsequenceRemainder checks that the lemmas of base appear in order in ext and
// returns the words of ext left unmatched.
func SubsequenceRemainder(base, ext []Word) ([]Word, bool) {
	var rest []Word
	i := 0
	for _, w := range ext {
		if i < len(base) && base[i].Lemma == w.Lemma {
			i++
			continue
		}
		rest = append(rest, w)
	}
	if i != len(base) {
		return nil, false
	}
	return rest, true
}
