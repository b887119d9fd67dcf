package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDict = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}], "partOfSpeech": ["v5r"]}]
    },
    {
      "id": "3",
      "kanji": [{"text": "風力", "common": false}],
      "kana": [{"text": "ふうりょく"}],
      "sense": [{"gloss": [{"text": "wind power"}, {"text": "wind force"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "4",
      "kanji": [],
      "kana": [{"text": "テスト", "common": true}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n", "vs"]}]
    }
  ]
}
`

func loadTestDict(t *testing.T) []JMdictEntry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := os.WriteFile(path, []byte(testDict), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		t.Fatalf("load dict: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	return entries
}

func TestGlossaryLookup(t *testing.T) {
	g := NewGlossary(loadTestDict(t))
	words := []struct {
		word, lemma, reading string
		found                bool
	}{
		{"犬", "犬", "イヌ", true},
		{"走っ", "走る", "ハシル", true},
		{"未知", "未知", "ミチ", false},
		{"犬", "犬", "ネコ", false},
		{"テスト", "テスト", "テスト", true},
	}
	for _, w := range words {
		got := g.Lookup(w.word, w.lemma, w.reading)
		if (len(got) > 0) != w.found {
			t.Errorf("Lookup(%s, %s, %s) found %d entries; want found=%v", w.word, w.lemma, w.reading, len(got), w.found)
		}
	}

	defs, err := g.GetDefinitionsJSON("犬", "犬", "")
	if err != nil || !strings.Contains(defs, "dog") {
		t.Errorf("GetDefinitionsJSON = %q, %v", defs, err)
	}
}

func TestGlossaryGloss(t *testing.T) {
	g := NewGlossary(loadTestDict(t))
	if got := g.Gloss("風力", 1); got != "wind power" {
		t.Errorf("Gloss(風力, 1) = %q", got)
	}
	if got := g.Gloss("風力", 0); got != "wind power; wind force" {
		t.Errorf("Gloss(風力, 0) = %q", got)
	}
	if got := g.Gloss("未知", 3); got != "" {
		t.Errorf("Gloss(未知) = %q; want empty", got)
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"イ", "い"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}
