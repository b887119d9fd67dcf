package termino

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/japaniel/termgraph/pkg/occurrence"
)

func TestLookupByNormalizedLemma(t *testing.T) {
	termino := New("idx", "fr", occurrence.NewMemory())
	termino.AddTerm(NewTerm("n: Énergie", Word{Lemma: "Énergie", Label: "N"}))
	termino.AddTerm(NewTerm("n: energie", Word{Lemma: "energie", Label: "N"}))
	termino.AddTerm(NewTerm("n: vent", Word{Lemma: "vent", Label: "N"}))

	got := termino.Lookup(LemmaLowerCase, "energie")
	if len(got) != 2 {
		t.Fatalf("expected 2 terms for energie, got %d", len(got))
	}
	if got[0].Key() != "n: Énergie" || got[1].Key() != "n: energie" {
		t.Errorf("expected insertion order, got %s, %s", got[0].Key(), got[1].Key())
	}
	if terms := termino.Lookup("no-such-index", "energie"); terms != nil {
		t.Errorf("expected nil for unknown index, got %v", terms)
	}
}

func TestWordLemmaIndexIsMultiKey(t *testing.T) {
	termino := New("idx", "fr", occurrence.NewMemory())
	termino.AddTerm(NewTerm("nn: énergie vent", Word{"énergie", "N"}, Word{"vent", "N"}))
	termino.AddTerm(NewTerm("nn: vent vent", Word{"vent", "N"}, Word{"vent", "N"}))

	if n := len(termino.Lookup(WordLemma, "vent")); n != 2 {
		t.Fatalf("expected both terms under vent, got %d", n)
	}
	if n := len(termino.Lookup(WordLemma, "énergie")); n != 1 {
		t.Fatalf("expected one term under énergie, got %d", n)
	}
	termino.RemoveTerm("nn: vent vent")
	if n := len(termino.Lookup(WordLemma, "vent")); n != 1 {
		t.Fatalf("expected one term under vent after removal, got %d", n)
	}
}

func TestIndexConsistencyUnderInterleavedMutations(t *testing.T) {
	termino := New("idx", "en", occurrence.NewMemory())
	rng := rand.New(rand.NewSource(7))
	present := map[string]bool{}
	for step := 0; step < 2000; step++ {
		k := fmt.Sprintf("w%d", rng.Intn(40))
		lemma := fmt.Sprintf("l%d", rng.Intn(5))
		key := k + ":" + lemma
		if present[key] {
			if _, err := termino.RemoveTerm(key); err != nil {
				t.Fatalf("remove %s: %v", key, err)
			}
			delete(present, key)
		} else {
			if err := termino.AddTerm(NewTerm(key, Word{Lemma: lemma, Label: "N"})); err != nil {
				t.Fatalf("add %s: %v", key, err)
			}
			present[key] = true
		}

		if step%100 != 0 {
			continue
		}
		expected := map[string]int{}
		for key := range present {
			expected[key[len(key)-2:]]++
		}
		for i := 0; i < 5; i++ {
			lemma := fmt.Sprintf("l%d", i)
			got := termino.Lookup(LemmaLowerCase, lemma)
			if len(got) != expected[lemma] {
				t.Fatalf("step %d: index has %d terms for %s, registry has %d", step, len(got), lemma, expected[lemma])
			}
			for _, term := range got {
				if !present[term.Key()] {
					t.Fatalf("step %d: stale term %s in index", step, term.Key())
				}
			}
		}
	}
}

func TestNormalizeLemma(t *testing.T) {
	tests := []struct{ in, out string }{
		{"Énergie", "energie"},
		{"  éolienne   OFFSHORE ", "eolienne offshore"},
		{"風力", "風力"},
		{"ガス", "ガス"},
		{"エネルギー", "エネルギー"},
		{"パネル", "パネル"},
		{"\u30ab\u3099ス", "ガス"},
	}
	for _, tt := range tests {
		if got := NormalizeLemma(tt.in); got != tt.out {
			t.Errorf("NormalizeLemma(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
	if NormalizeLemma("ガス") == NormalizeLemma("カス") {
		t.Errorf("voiced and unvoiced kana must keep distinct keys")
	}
}

func TestLemmaIndexKeepsVoicedKanaApart(t *testing.T) {
	gas := NewTerm("n: ガス", Word{Label: "N", Lemma: "ガス"})
	kasu := NewTerm("n: カス", Word{Label: "N", Lemma: "カス"})
	tt := New("ja", "ja", occurrence.NewMemory())
	for _, term := range []*Term{gas, kasu} {
		if err := tt.AddTerm(term); err != nil {
			t.Fatalf("add %s: %v", term.Key(), err)
		}
	}
	got := tt.Lookup(LemmaLowerCase, "ガス")
	if len(got) != 1 || got[0] != gas {
		t.Fatalf("Lookup(ガス) = %v; want only the ガス term", got)
	}
}
