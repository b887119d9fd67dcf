package scoring

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

func newTerm(pattern, lemmas string) *termino.Term {
	labels, ls := strings.Fields(pattern), strings.Fields(lemmas)
	words := make([]termino.Word, len(labels))
	for i := range labels {
		words[i] = termino.Word{Label: labels[i], Lemma: ls[i]}
	}
	return termino.NewTerm(termino.GroupingKey(words...), words...)
}

func newTerminology(t *testing.T, terms ...*termino.Term) *termino.Terminology {
	t.Helper()
	tt := termino.New("scoring", "en", occurrence.NewMemory())
	for _, term := range terms {
		if err := tt.AddTerm(term); err != nil {
			t.Fatalf("add %s: %v", term.Key(), err)
		}
	}
	return tt
}

func record(t *testing.T, tt *termino.Terminology, term *termino.Term, doc string, begin, end int) {
	t.Helper()
	if err := tt.Store().Record(context.Background(), term.Key(), doc, occurrence.Span{Begin: begin, End: end}); err != nil {
		t.Fatalf("record: %v", err)
	}
}

func TestComputeFrequencies(t *testing.T) {
	wind := newTerm("N", "wind")
	blade := newTerm("N", "blade")
	tt := newTerminology(t, wind, blade)
	record(t, tt, wind, "d1", 0, 4)
	record(t, tt, wind, "d1", 10, 14)
	record(t, tt, wind, "d2", 0, 4)

	if err := ComputeFrequencies(context.Background(), tt); err != nil {
		t.Fatalf("ComputeFrequencies: %v", err)
	}
	if wind.Frequency != 3 || wind.DocumentFrequency != 2 {
		t.Errorf("wind: got freq=%d df=%d, want 3/2", wind.Frequency, wind.DocumentFrequency)
	}
	if blade.Frequency != 0 || blade.DocumentFrequency != 0 {
		t.Errorf("blade: got freq=%d df=%d, want 0/0", blade.Frequency, blade.DocumentFrequency)
	}
}

func TestSpecificity(t *testing.T) {
	the := newTerm("D", "the")
	turbine := newTerm("N", "turbine")
	energy := newTerm("N", "energy")
	unseen := newTerm("N", "rotor")
	tt := newTerminology(t, the, turbine, energy, unseen)
	the.Frequency, turbine.Frequency, energy.Frequency = 50, 50, 10

	s := &Specificity{General: resource.NewGeneralLanguage(map[string]float64{"the": 1000, "energy": 10})}
	s.Run(tt)

	if math.Abs(turbine.Specificity-1) > 1e-9 {
		t.Errorf("expected the most specific term to score 1, got %v", turbine.Specificity)
	}
	if the.Specificity >= 0 || the.WRLog >= 0 {
		t.Errorf("a general-language word must score below zero: spec=%v wr=%v", the.Specificity, the.WRLog)
	}
	if energy.Specificity <= 0 || energy.Specificity >= turbine.Specificity {
		t.Errorf("unexpected energy specificity %v", energy.Specificity)
	}
	if turbine.WRLog <= energy.WRLog {
		t.Errorf("expected turbine WRLog %v above energy %v", turbine.WRLog, energy.WRLog)
	}
	if unseen.Specificity != 0 || unseen.WRLog != 0 {
		t.Errorf("unseen term must score 0, got %v/%v", unseen.Specificity, unseen.WRLog)
	}
	for _, term := range tt.Terms() {
		if term.Specificity < -1 || term.Specificity > 1 {
			t.Errorf("%s: specificity %v out of [-1, 1]", term.Key(), term.Specificity)
		}
	}
}

func TestSpecificityVoicedKana(t *testing.T) {
	energy := newTerm("N", "エネルギー")
	power := newTerm("N", "電気")
	tt := newTerminology(t, energy, power)
	energy.Frequency, power.Frequency = 20, 20

	s := &Specificity{General: resource.NewGeneralLanguage(map[string]float64{
		"エネルギー": 15023, "電気": 18234, "の": 1000000,
	})}
	s.Run(tt)

	// Same corpus frequency, so the gap is the ratio of the reference frequencies.
	want := math.Log10(18234.0 / 15023.0)
	if got := energy.WRLog - power.WRLog; math.Abs(got-want) > 1e-9 {
		t.Errorf("WRLog gap = %v; want %v (energy=%v power=%v)", got, want, energy.WRLog, power.WRLog)
	}
}

func TestMeasureByName(t *testing.T) {
	if _, err := MeasureByName("cosine"); !errors.Is(err, termino.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	for _, name := range append(MeasureNames(), "") {
		if _, err := MeasureByName(name); err != nil {
			t.Errorf("%q: %v", name, err)
		}
	}
}

func TestMeasures(t *testing.T) {
	tests := []struct {
		name string
		m    Measure
		tbl  Table
		want float64
	}{
		{"dice", Dice, Table{A: 2, B: 2, C: 0, D: 10}, 4.0 / 6.0},
		{"jaccard", Jaccard, Table{A: 2, B: 2, C: 0, D: 10}, 0.5},
		{"independent log-likelihood", LogLikelihood, Table{A: 1, B: 1, C: 1, D: 1}, 0},
		{"mutual information", MutualInformation, Table{A: 2, B: 0, C: 0, D: 2}, 1},
		{"empty dice", Dice, Table{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m(tt.tbl); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewContextualizerRejectsUnknownMeasure(t *testing.T) {
	_, err := NewContextualizer(Contextualizer{Measure: "cosine"})
	if !errors.Is(err, termino.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func contextFixture(t *testing.T) (*termino.Terminology, map[string]*termino.Term) {
	t.Helper()
	terms := map[string]*termino.Term{
		"wind":         newTerm("N", "wind"),
		"turbine":      newTerm("N", "turbine"),
		"blade":        newTerm("N", "blade"),
		"wind turbine": newTerm("N N", "wind turbine"),
	}
	tt := newTerminology(t, terms["wind"], terms["turbine"], terms["blade"], terms["wind turbine"])
	// "wind turbine blade"
	record(t, tt, terms["wind"], "d1", 0, 4)
	record(t, tt, terms["wind turbine"], "d1", 0, 12)
	record(t, tt, terms["turbine"], "d1", 5, 12)
	record(t, tt, terms["blade"], "d1", 13, 18)
	return tt, terms
}

func TestContextualizerSingleWordScope(t *testing.T) {
	tt, terms := contextFixture(t)
	c, err := NewContextualizer(Contextualizer{Scope: 1})
	if err != nil {
		t.Fatalf("NewContextualizer: %v", err)
	}
	n, err := c.Run(context.Background(), tt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 vectors, got %d", n)
	}
	wind := terms["wind"].Context
	if len(wind.Entries) != 1 || wind.Entries[0].CoTerm != terms["turbine"].Key() {
		t.Fatalf("unexpected wind context %+v", wind.Entries)
	}
	if e, ok := terms["turbine"].Context.Get(terms["blade"].Key()); !ok || e.Cooccurrences != 1 {
		t.Errorf("expected blade in turbine context, got %+v", terms["turbine"].Context.Entries)
	}
	if len(terms["turbine"].Context.Entries) != 2 {
		t.Errorf("expected 2 co-terms for turbine, got %d", len(terms["turbine"].Context.Entries))
	}
	if terms["wind turbine"].Context != nil {
		t.Errorf("multi-word terms only get a vector with AllTerms")
	}
}

func TestContextualizerAllTermsAndThreshold(t *testing.T) {
	tt, terms := contextFixture(t)
	c := &Contextualizer{Scope: 1, AllTerms: true}
	if _, err := c.Run(context.Background(), tt); err != nil {
		t.Fatalf("Run: %v", err)
	}
	mw := terms["wind turbine"].Context
	if mw == nil || len(mw.Entries) != 1 || mw.Entries[0].CoTerm != terms["blade"].Key() {
		t.Fatalf("unexpected multi-word context %+v", mw)
	}

	tt, _ = contextFixture(t)
	c = &Contextualizer{Scope: 3, MinCoOccFrequency: 2}
	n, err := c.Run(context.Background(), tt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no vector above the co-occurrence threshold, got %d", n)
	}
}
