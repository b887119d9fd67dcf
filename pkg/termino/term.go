package termino

import (
	"sort"
	"strings"
)

// Word is one component word of a term: its lemma and its syntactic label (N, A, P, V...).
type Word struct {
	Lemma string
	Label string
}

// ComponentKind tags a morphological component.
type ComponentKind int

const (
	Stem ComponentKind = iota
	Prefix
	Suffix
)

func (k ComponentKind) String() string {
	switch k {
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	default:
		return "stem"
	}
}

// Component is one segment of a morphological decomposition.
type Component struct {
	// Substring is the part of the word covered by this component.
	Substring string
	// Lemma is the dictionary form the substring was recognized as.
	Lemma string
	Begin int
	End   int
	Kind  ComponentKind
}

// WordStructure is the morphological decomposition of a single-word term.
type WordStructure struct {
	Components []Component
	Score      float64
	// Manual is set when the structure comes from an override table rather than scoring.
	Manual bool
}

// IsCompound reports whether the structure has more than one component.
func (s *WordStructure) IsCompound() bool {
	return s != nil && len(s.Components) > 1
}

// ContextEntry is one co-term of a context vector.
type ContextEntry struct {
	CoTerm        string
	Cooccurrences int
	AssocRate     float64
}

// ContextVector holds the co-occurring terms of a term, ordered by association rate.
type ContextVector struct {
	Entries []ContextEntry
}

// Get returns the entry for the given co-term key.
func (v *ContextVector) Get(coTerm string) (ContextEntry, bool) {
	if v == nil {
		return ContextEntry{}, false
	}
	for _, e := range v.Entries {
		if e.CoTerm == coTerm {
			return e, true
		}
	}
	return ContextEntry{}, false
}

// Term is a candidate terminological unit.
type Term struct {
	key   string
	words []Word
	seq   uint64

	// Forms counts the surface forms the term was spotted with.
	Forms             map[string]int
	Frequency         int
	DocumentFrequency int
	Specificity       float64
	WRLog             float64
	// Rank is assigned by the ranker; 0 means unset.
	Rank       int
	Morphology *WordStructure
	Context    *ContextVector
}

// NewTerm creates a term. The grouping key is immutable afterwards.
func NewTerm(key string, words ...Word) *Term {
	w := make([]Word, len(words))
	copy(w, words)
	return &Term{key: key, words: w, Forms: make(map[string]int)}
}

// Key returns the grouping key.
func (t *Term) Key() string { return t.key }

// Words returns the component words of the term.
func (t *Term) Words() []Word { return t.words }

// Size is the number of words.
func (t *Term) Size() int { return len(t.words) }

// IsSingleWord reports whether the term has exactly one word.
func (t *Term) IsSingleWord() bool { return len(t.words) == 1 }

// Pattern returns the syntactic labels joined by a space, e.g. "N P N".
func (t *Term) Pattern() string {
	labels := make([]string, len(t.words))
	for i, w := range t.words {
		labels[i] = w.Label
	}
	return strings.Join(labels, " ")
}

// Lemma returns the word lemmas joined by a space.
func (t *Term) Lemma() string {
	lemmas := make([]string, len(t.words))
	for i, w := range t.words {
		lemmas[i] = w.Lemma
	}
	return strings.Join(lemmas, " ")
}

// Pilot returns the most frequent surface form, or the lemma when no form was recorded.
func (t *Term) Pilot() string {
	best, bestCount := "", -1
	for form, n := range t.Forms {
		if n > bestCount || (n == bestCount && form < best) {
			best, bestCount = form, n
		}
	}
	if best == "" {
		return t.Lemma()
	}
	return best
}

// AddForm increments the count of a surface form.
func (t *Term) AddForm(form string, n int) {
	if t.Forms == nil {
		t.Forms = make(map[string]int)
	}
	t.Forms[form] += n
}

// GroupingKey builds the canonical key for a word sequence, e.g. "npn: énergie de vent".
func GroupingKey(words ...Word) string {
	var pattern strings.Builder
	lemmas := make([]string, len(words))
	for i, w := range words {
		pattern.WriteString(strings.ToLower(w.Label))
		lemmas[i] = w.Lemma
	}
	return pattern.String() + ": " + strings.Join(lemmas, " ")
}

// SortByFrequencyDesc sorts terms by descending frequency, keeping the incoming order for ties.
func SortByFrequencyDesc(terms []*Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Frequency > terms[j].Frequency
	})
}
