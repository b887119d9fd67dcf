package scoring

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/termino"
)

// CoTermsType selects which terms may appear in a context vector.
type CoTermsType int

const (
	SingleWordCoTerms CoTermsType = iota
	MultiWordCoTerms
	AllCoTerms
)

var coTermsTypeNames = map[CoTermsType]string{
	SingleWordCoTerms: "single-word",
	MultiWordCoTerms:  "multi-word",
	AllCoTerms:        "all",
}

func (c CoTermsType) String() string { return coTermsTypeNames[c] }

func (c CoTermsType) accepts(t *termino.Term) bool {
	switch c {
	case SingleWordCoTerms:
		return t.IsSingleWord()
	case MultiWordCoTerms:
		return !t.IsSingleWord()
	}
	return true
}

func (c *CoTermsType) UnmarshalText(b []byte) error {
	for k, name := range coTermsTypeNames {
		if name == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("%w: unknown co-terms type %q", termino.ErrConfiguration, b)
}

func (c CoTermsType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

const DefaultScope = 3

// Contextualizer builds the context vector of terms from the co-terms found
// within Scope occurrences on each side, in every document of the store.
type Contextualizer struct {
	Scope       int
	CoTermsType CoTermsType
	// MinCoOccFrequency drops co-terms seen fewer times with the term.
	MinCoOccFrequency int
	// Measure is the association measure name; see MeasureByName.
	Measure string
	// AllTerms computes vectors for every term instead of single-word terms only.
	AllTerms bool
	Logger   *log.Logger

	measure Measure
}

// NewContextualizer resolves the measure eagerly so that a bad name fails
// before any document is read.
func NewContextualizer(c Contextualizer) (*Contextualizer, error) {
	m, err := MeasureByName(c.Measure)
	if err != nil {
		return nil, err
	}
	if c.Scope < 0 || c.MinCoOccFrequency < 0 {
		return nil, fmt.Errorf("%w: contextualizer scope and minimum frequency must be positive", termino.ErrConfiguration)
	}
	if c.Scope == 0 {
		c.Scope = DefaultScope
	}
	if c.MinCoOccFrequency == 0 {
		c.MinCoOccFrequency = 1
	}
	c.measure = m
	return &c, nil
}

type cooccurrences map[string]map[string]int

func (m cooccurrences) add(term, coTerm string) {
	row, ok := m[term]
	if !ok {
		row = make(map[string]int)
		m[term] = row
	}
	row[coTerm]++
}

// Run sets the Context of the selected terms and returns how many got a
// non-empty vector.
func (c *Contextualizer) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	if c.measure == nil {
		nc, err := NewContextualizer(*c)
		if err != nil {
			return 0, err
		}
		*c = *nc
	}
	store := t.Store()
	if err := store.Flush(ctx); err != nil {
		return 0, fmt.Errorf("flush occurrences: %w", err)
	}
	docs, err := store.Documents(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	counts := make(cooccurrences)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		occs, err := occurrence.Collect(store.DocumentOccurrences(ctx, doc))
		if err != nil {
			return 0, fmt.Errorf("occurrences of %s: %w", doc, err)
		}
		c.countDocument(t, occs, counts)
	}

	rowTotals := make(map[string]float64)
	colTotals := make(map[string]float64)
	var total float64
	for term, row := range counts {
		for coTerm, n := range row {
			rowTotals[term] += float64(n)
			colTotals[coTerm] += float64(n)
			total += float64(n)
		}
	}

	n := 0
	for _, term := range t.Terms() {
		if !c.AllTerms && !term.IsSingleWord() {
			continue
		}
		row := counts[term.Key()]
		vec := &termino.ContextVector{}
		for coTerm, k := range row {
			if k < c.MinCoOccFrequency {
				continue
			}
			a := float64(k)
			tbl := Table{A: a, B: rowTotals[term.Key()] - a, C: colTotals[coTerm] - a}
			tbl.D = total - tbl.A - tbl.B - tbl.C
			vec.Entries = append(vec.Entries, termino.ContextEntry{
				CoTerm:        coTerm,
				Cooccurrences: k,
				AssocRate:     c.measure(tbl),
			})
		}
		sort.Slice(vec.Entries, func(i, j int) bool {
			ei, ej := vec.Entries[i], vec.Entries[j]
			if ei.AssocRate != ej.AssocRate {
				return ei.AssocRate > ej.AssocRate
			}
			return ei.CoTerm < ej.CoTerm
		})
		term.Context = vec
		if len(vec.Entries) > 0 {
			n++
		}
	}
	if c.Logger != nil {
		c.Logger.Printf("contexts: %d vectors over %d documents", n, len(docs))
	}
	return n, nil
}

// countDocument adds the co-occurrences of one document. occs is sorted by begin offset.
func (c *Contextualizer) countDocument(t *termino.Terminology, occs []occurrence.Occurrence, counts cooccurrences) {
	var coTerms []occurrence.Occurrence
	for _, o := range occs {
		if term, ok := t.Term(o.TermKey); ok && c.CoTermsType.accepts(term) {
			coTerms = append(coTerms, o)
		}
	}
	for _, o := range occs {
		term, ok := t.Term(o.TermKey)
		if !ok || (!c.AllTerms && !term.IsSingleWord()) {
			continue
		}
		// Right neighbours start after the occurrence ends.
		right := sort.Search(len(coTerms), func(i int) bool { return coTerms[i].Span.Begin >= o.Span.End })
		for i := right; i < len(coTerms) && i < right+c.Scope; i++ {
			if coTerms[i].TermKey != o.TermKey {
				counts.add(o.TermKey, coTerms[i].TermKey)
			}
		}
		left := sort.Search(len(coTerms), func(i int) bool { return coTerms[i].Span.Begin >= o.Span.Begin })
		taken := 0
		for i := left - 1; i >= 0 && taken < c.Scope; i-- {
			if coTerms[i].Span.End > o.Span.Begin {
				continue
			}
			taken++
			if coTerms[i].TermKey != o.TermKey {
				counts.add(o.TermKey, coTerms[i].TermKey)
			}
		}
	}
}
