package analysis

import (
	"strings"

	"github.com/japaniel/termgraph/pkg/termino"
)

// Candidate is a token sequence matching a term pattern.
type Candidate struct {
	Words   []termino.Word
	Surface string
	Begin   int
	End     int
}

// Key returns the grouping key of the candidate.
func (c Candidate) Key() string { return termino.GroupingKey(c.Words...) }

// Spotter finds the token sequences of a sentence whose labels match one of
// the patterns. Candidates never cross a sentence boundary.
type Spotter struct {
	patterns [][]string
	// StopWords lists lemmas that no candidate may contain.
	StopWords map[string]bool
}

// NewSpotter compiles label patterns such as "N P N".
func NewSpotter(patterns []string, stopWords []string) *Spotter {
	s := &Spotter{StopWords: make(map[string]bool, len(stopWords))}
	for _, p := range patterns {
		if f := strings.Fields(p); len(f) > 0 {
			s.patterns = append(s.patterns, f)
		}
	}
	for _, w := range stopWords {
		s.StopWords[termino.NormalizeLemma(w)] = true
	}
	return s
}

func (s *Spotter) matches(tokens []Token, pattern []string) bool {
	if len(tokens) < len(pattern) {
		return false
	}
	for i, label := range pattern {
		if tokens[i].Label != label || s.StopWords[termino.NormalizeLemma(tokens[i].Lemma)] {
			return false
		}
	}
	return true
}

// Spot returns the candidates of every sentence in document order.
func (s *Spotter) Spot(sentences []Sentence) []Candidate {
	var out []Candidate
	for _, sent := range sentences {
		toks := sent.Tokens
		for i := range toks {
			for _, p := range s.patterns {
				if !s.matches(toks[i:], p) {
					continue
				}
				out = append(out, newCandidate(toks[i:i+len(p)]))
			}
		}
	}
	return out
}

func newCandidate(toks []Token) Candidate {
	c := Candidate{Begin: toks[0].Begin, End: toks[len(toks)-1].End}
	var surface strings.Builder
	for i, t := range toks {
		if i > 0 && t.Begin > toks[i-1].End {
			surface.WriteByte(' ')
		}
		surface.WriteString(t.Surface)
		c.Words = append(c.Words, termino.Word{Lemma: t.Lemma, Label: t.Label})
	}
	c.Surface = surface.String()
	return c
}
