package postproc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/termino"
)

func newTerm(pattern, lemmas string, freq int) *termino.Term {
	labels, ls := strings.Fields(pattern), strings.Fields(lemmas)
	words := make([]termino.Word, len(labels))
	for i := range labels {
		words[i] = termino.Word{Label: labels[i], Lemma: ls[i]}
	}
	term := termino.NewTerm(termino.GroupingKey(words...), words...)
	term.Frequency = freq
	return term
}

func newTerminology(t *testing.T, terms ...*termino.Term) *termino.Terminology {
	t.Helper()
	tt := termino.New("postproc", "en", occurrence.NewMemory())
	for _, term := range terms {
		if err := tt.AddTerm(term); err != nil {
			t.Fatalf("add %s: %v", term.Key(), err)
		}
	}
	return tt
}

func link(t *testing.T, tt *termino.Terminology, typ termino.RelationType, from, to *termino.Term, props termino.Properties) {
	t.Helper()
	if _, err := tt.AddRelation(typ, from.Key(), to.Key(), props); err != nil {
		t.Fatalf("relation %s -> %s: %v", from.Key(), to.Key(), err)
	}
}

func TestThresholdCleaner(t *testing.T) {
	t1, t2, t3, t4 := newTerm("N", "a", 1), newTerm("N", "b", 5), newTerm("N", "c", 3), newTerm("N", "d", 10)
	tt := newTerminology(t, t1, t2, t3, t4)
	link(t, tt, termino.Syntactic, t1, t2, nil)
	link(t, tt, termino.Syntactic, t2, t3, nil)
	link(t, tt, termino.Syntactic, t3, t4, nil)
	link(t, tt, termino.Syntactic, t4, t1, nil)

	n, err := (&ThresholdCleaner{Property: termino.Frequency, Threshold: 3}).Run(context.Background(), tt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 || tt.Contains(t1.Key()) {
		t.Fatalf("expected only %s removed, n=%d", t1.Key(), n)
	}
	for _, term := range tt.Terms() {
		if term.Frequency < 3 {
			t.Errorf("%s survived with frequency %d", term.Key(), term.Frequency)
		}
	}
	if tt.RelationCount() != 2 {
		t.Errorf("expected the 2 incident edges gone, %d relations left", tt.RelationCount())
	}
}

func TestThresholdCleanerInvertedProperty(t *testing.T) {
	short := newTerm("N", "wind", 1)
	mid := newTerm("N N", "wind energy", 1)
	long := newTerm("A N N", "offshore wind energy", 1)
	tt := newTerminology(t, short, mid, long)

	if _, err := (&ThresholdCleaner{Property: termino.Size, Threshold: 2}).Run(context.Background(), tt); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tt.Size() != 2 || tt.Contains(long.Key()) {
		t.Fatalf("expected terms longer than 2 words removed, left %d", tt.Size())
	}
}

func TestKeepVariantsScope(t *testing.T) {
	build := func() (*termino.Terminology, []*termino.Term) {
		a, b, c, d := newTerm("N", "a", 10), newTerm("N", "b", 1), newTerm("N", "c", 1), newTerm("N", "d", 1)
		tt := newTerminology(t, a, b, c, d)
		link(t, tt, termino.Graphical, a, b, nil)
		link(t, tt, termino.Graphical, b, c, nil)
		link(t, tt, termino.Extension, a, d, nil)
		return tt, []*termino.Term{a, b, c, d}
	}
	tests := []struct {
		scope VariantScope
		kept  []bool
	}{
		{Direct, []bool{true, true, false, false}},
		{Transitive, []bool{true, true, true, false}},
	}
	for _, tc := range tests {
		t.Run(tc.scope.String(), func(t *testing.T) {
			tt, terms := build()
			c := &ThresholdCleaner{Property: termino.Frequency, Threshold: 5, KeepVariants: true, Scope: tc.scope}
			if _, err := c.Run(context.Background(), tt); err != nil {
				t.Fatalf("Run: %v", err)
			}
			for i, term := range terms {
				if tt.Contains(term.Key()) != tc.kept[i] {
					t.Errorf("%s: kept=%v, want %v", term.Key(), tt.Contains(term.Key()), tc.kept[i])
				}
			}
		})
	}
}

func TestVariantScopeUnmarshal(t *testing.T) {
	var s VariantScope
	if err := s.UnmarshalText([]byte("transitive")); err != nil || s != Transitive {
		t.Fatalf("got %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("nearby")); !errors.Is(err, termino.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestTopNCleaner(t *testing.T) {
	t1, t2, t3, t4 := newTerm("N", "a", 5), newTerm("N", "b", 3), newTerm("N", "c", 3), newTerm("N", "d", 1)
	tt := newTerminology(t, t1, t2, t3, t4)

	if n, err := (&TopNCleaner{Property: termino.Frequency, N: 10}).Run(context.Background(), tt); err != nil || n != 0 {
		t.Fatalf("N above size must be a no-op: n=%d err=%v", n, err)
	}

	c := &TopNCleaner{Property: termino.Frequency, N: 2}
	if _, err := c.Run(context.Background(), tt); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !tt.Contains(t1.Key()) || !tt.Contains(t2.Key()) || tt.Size() != 2 {
		t.Fatalf("expected a and b kept (tie broken by registration order), size=%d", tt.Size())
	}
	if n, err := c.Run(context.Background(), tt); err != nil || n != 0 {
		t.Fatalf("second run must be idempotent: n=%d err=%v", n, err)
	}

	if err := (&TopNCleaner{N: 0}).Validate(); !errors.Is(err, termino.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for n=0, got %v", err)
	}
}

func TestMaxSizeCleanerDropsBoundaryTies(t *testing.T) {
	t1, t2, t3, t4 := newTerm("N", "a", 5), newTerm("N", "b", 3), newTerm("N", "c", 3), newTerm("N", "d", 1)
	tt := newTerminology(t, t1, t2, t3, t4)

	n, err := (&MaxSizeCleaner{Property: termino.Frequency, MaxSize: 2}).Run(context.Background(), tt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 3 || tt.Size() != 1 || !tt.Contains(t1.Key()) {
		t.Fatalf("expected only a left, removed %d, size %d", n, tt.Size())
	}
}

func TestRanker(t *testing.T) {
	t1, t2, t3, t4 := newTerm("N", "a", 1), newTerm("N", "b", 3), newTerm("N", "c", 3), newTerm("N", "d", 5)
	tt := newTerminology(t, t1, t2, t3, t4)

	if _, err := (&Ranker{Property: termino.Rank}).Run(tt); !errors.Is(err, termino.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	ranked, err := (&Ranker{Property: termino.Frequency, Descending: true}).Run(tt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []*termino.Term{t4, t2, t3, t1}
	for i, term := range want {
		if ranked[i] != term || term.Rank != i+1 {
			t.Errorf("rank %d: got %s (rank %d)", i+1, ranked[i].Key(), term.Rank)
		}
	}
}

func TestMerger(t *testing.T) {
	energy := newTerm("N", "energy", 5)
	energy.AddForm("energy", 5)
	upper := newTerm("N", "Energy", 2)
	upper.AddForm("Energy", 2)
	determined := newTerm("D N", "the energy", 1)
	wind := newTerm("N N", "wind energy", 4)
	tt := newTerminology(t, energy, upper, determined, wind)
	link(t, tt, termino.Graphical, energy, upper, termino.Properties{termino.Similarity: 1.0})
	link(t, tt, termino.Extension, energy, determined, nil)
	link(t, tt, termino.Extension, energy, wind, nil)

	n, err := DefaultMerger().Run(context.Background(), tt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 folded terms, got %d", n)
	}
	if tt.Size() != 2 || !tt.Contains(wind.Key()) {
		t.Fatalf("unexpected remaining terms: %d", tt.Size())
	}
	if energy.Frequency != 8 {
		t.Errorf("expected accumulated frequency 8, got %d", energy.Frequency)
	}
	if energy.Forms["Energy"] != 2 {
		t.Errorf("expected folded surface form, got %v", energy.Forms)
	}
}

func TestMergerDocumentFrequency(t *testing.T) {
	energy := newTerm("N", "energy", 2)
	upper := newTerm("N", "Energy", 2)
	tt := newTerminology(t, energy, upper)
	link(t, tt, termino.Graphical, energy, upper, termino.Properties{termino.Similarity: 1.0})
	ctx := context.Background()
	for _, occ := range []struct {
		term *termino.Term
		doc  string
	}{{energy, "d1"}, {energy, "d2"}, {upper, "d2"}, {upper, "d3"}} {
		if err := tt.Store().Record(ctx, occ.term.Key(), occ.doc, occurrence.Span{Begin: 0, End: 6}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	energy.DocumentFrequency, upper.DocumentFrequency = 2, 2

	if _, err := DefaultMerger().Run(ctx, tt); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if energy.Frequency != 4 {
		t.Errorf("expected frequency 4, got %d", energy.Frequency)
	}
	if energy.DocumentFrequency != 3 {
		t.Errorf("expected the union of documents (3), got %d", energy.DocumentFrequency)
	}
}

type countingPass struct{ runs int }

func (p *countingPass) Run(context.Context, *termino.Terminology) (int, error) {
	p.runs++
	return 0, nil
}

func TestTrigger(t *testing.T) {
	tt := newTerminology(t, newTerm("N", "a", 1), newTerm("N", "b", 1), newTerm("N", "c", 1))
	ctx := context.Background()

	p := &countingPass{}
	tr := &Trigger{Pass: p, Period: 2}
	for i := 1; i <= 5; i++ {
		if _, err := tr.Observe(ctx, tt, i); err != nil {
			t.Fatalf("Observe: %v", err)
		}
	}
	if p.runs != 2 {
		t.Errorf("periodic: expected 2 runs, got %d", p.runs)
	}

	p = &countingPass{}
	tr = &Trigger{Pass: p, SizeBound: 3}
	tr.Observe(ctx, tt, 1)
	if err := tt.AddTerm(newTerm("N", "d", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	tr.Observe(ctx, tt, 2)
	if p.runs != 1 {
		t.Errorf("size trigger: expected 1 run, got %d", p.runs)
	}
}
