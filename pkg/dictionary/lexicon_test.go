package dictionary

import (
	"reflect"
	"strings"
	"testing"

	"github.com/japaniel/termgraph/pkg/resource"
)

func TestLexiconFrequency(t *testing.T) {
	l := NewLexicon()
	l.Add("wind", 3)
	l.Add("windmill", 1)
	l.Add("wind", 2)

	tests := []struct {
		word     string
		freq     int
		isPrefix bool
		exists   bool
	}{
		{"wind", 5, true, true},
		{"windmill", 1, false, true},
		{"win", -1, true, false},
		{"mill", -1, false, false},
	}
	for _, tt := range tests {
		f, p, ok := l.Frequency(tt.word)
		if f != tt.freq || p != tt.isPrefix || ok != tt.exists {
			t.Errorf("Frequency(%q) = %d, %v, %v; want %d, %v, %v", tt.word, f, p, ok, tt.freq, tt.isPrefix, tt.exists)
		}
	}
	if l.Size() != 2 || l.MaxFrequency() != 5 {
		t.Errorf("Size() = %d, MaxFrequency() = %d", l.Size(), l.MaxFrequency())
	}
}

func TestLexiconWithPrefix(t *testing.T) {
	l := NewLexicon()
	for _, w := range []string{"power", "powerplant", "pow", "sun", "powder"} {
		l.Add(w, 1)
	}
	got := l.WithPrefix("pow", 0)
	want := []string{"pow", "powder", "power", "powerplant"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WithPrefix(pow) = %v; want %v", got, want)
	}
	if got := l.WithPrefix("pow", 2); len(got) != 2 {
		t.Fatalf("expected limit to apply, got %v", got)
	}
	if got := l.WithPrefix("x", 0); got != nil {
		t.Fatalf("expected nil for unknown prefix, got %v", got)
	}
}

func TestLoadLexicon(t *testing.T) {
	l, err := LoadLexicon(strings.NewReader("# words\nwind\t4\nmill\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f, _, _ := l.Frequency("wind"); f != 4 {
		t.Errorf("wind frequency = %d", f)
	}
	if !l.Contains("mill") {
		t.Errorf("expected mill")
	}

	rc, err := resource.Open(resource.BuiltinLocator("ja/lexicon.txt"))
	if err != nil {
		t.Fatalf("open builtin lexicon: %v", err)
	}
	defer rc.Close()
	ja, err := LoadLexicon(rc)
	if err != nil {
		t.Fatalf("load builtin lexicon: %v", err)
	}
	if !ja.Contains("風力") || !ja.Contains("発電") {
		t.Errorf("builtin ja lexicon misses expected words")
	}
}

func TestLexiconFromJMdict(t *testing.T) {
	l := LexiconFromJMdict(loadTestDict(t))
	if f, _, ok := l.Frequency("犬"); !ok || f != 2 {
		t.Errorf("犬 = %d, %v; want common weight 2", f, ok)
	}
	if f, _, ok := l.Frequency("風力"); !ok || f != 1 {
		t.Errorf("風力 = %d, %v; want 1", f, ok)
	}
}
