package resource

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in   string
		want Locator
	}{
		{"builtin:en/prefixes.txt", Locator{Kind: Builtin, Path: "en/prefixes.txt"}},
		{"file:/tmp/a.txt", Locator{Kind: Filesystem, Path: "/tmp/a.txt"}},
		{"/tmp/a.txt", Locator{Kind: Filesystem, Path: "/tmp/a.txt"}},
		{"zip:/tmp/res.zip!/en/a.txt", Locator{Kind: Archive, Archive: "/tmp/res.zip", Path: "en/a.txt"}},
	}
	for _, tt := range tests {
		got, err := ParseLocator(tt.in)
		if err != nil {
			t.Fatalf("ParseLocator(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLocator(%q) = %+v; want %+v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "builtin:", "zip:/tmp/res.zip", "zip:!a"} {
		if _, err := ParseLocator(bad); err == nil {
			t.Errorf("ParseLocator(%q): expected error", bad)
		}
	}
}

func TestOpenEveryKind(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(plain, []byte("wind\nmill\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(dir, "res.zip")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("en/words.txt")
	w.Write([]byte("sun\n"))
	zw.Close()
	f.Close()

	cases := map[string]string{
		"builtin:en/lexicon.txt":           "wind",
		plain:                              "mill",
		"zip:" + archive + "!en/words.txt": "sun",
	}
	for loc, want := range cases {
		l, err := ParseLocator(loc)
		if err != nil {
			t.Fatalf("parse %s: %v", loc, err)
		}
		rc, err := Open(l)
		if err != nil {
			t.Fatalf("open %s: %v", loc, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !strings.Contains(string(data), want) {
			t.Errorf("%s: expected %q in content", loc, want)
		}
	}

	missing := []Locator{
		BuiltinLocator("en/nope.txt"),
		{Kind: Filesystem, Path: filepath.Join(dir, "nope")},
		{Kind: Archive, Archive: archive, Path: "nope"},
	}
	for _, l := range missing {
		if err := Exists(l); !errors.Is(err, ErrNotFound) {
			t.Errorf("Exists(%s) = %v; want ErrNotFound", l, err)
		}
	}
}

func TestReadPairs(t *testing.T) {
	in := "# reference\nwind\tvent\nsun\nenergy\ténergie\textra\n\n"
	var logs bytes.Buffer
	pairs, err := ReadPairs(strings.NewReader(in), "ref.tsv", log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("ReadPairs: %v", err)
	}
	if len(pairs) != 2 || pairs[0] != [2]string{"wind", "vent"} || pairs[1] != [2]string{"energy", "énergie"} {
		t.Fatalf("unexpected pairs %v", pairs)
	}
	if n := strings.Count(logs.String(), "\n"); n != 2 {
		t.Errorf("expected 2 warnings, got %d: %s", n, logs.String())
	}
}

func TestReadTableSkipsMalformed(t *testing.T) {
	var logs bytes.Buffer
	rows, err := ReadTable(strings.NewReader("a\t1\nb\nc\t3\t9\n"), "t.tsv", 2, log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(rows) != 2 || rows[1].Line != 3 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if !strings.Contains(logs.String(), "t.tsv:2") || !strings.Contains(logs.String(), ErrMalformedRecord.Error()) {
		t.Errorf("expected a malformed-record warning for line 2, got %q", logs.String())
	}
}

func TestLoadGeneralLanguage(t *testing.T) {
	g, err := LoadGeneralLanguage(strings.NewReader("Wind\t10\npower\t30\nbad\tx\n"), "gl", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f, ok := g.Frequency("wind"); !ok || f != 10 {
		t.Errorf("Frequency(wind) = %v, %v", f, ok)
	}
	if g.Total() != 40 || g.Size() != 2 {
		t.Errorf("Total() = %v, Size() = %d", g.Total(), g.Size())
	}
}

func TestGeneralLanguageNormalizesKeys(t *testing.T) {
	g, err := LoadGeneralLanguage(strings.NewReader("Énergie\t5\nガス\t7\nエネルギー\t15023\n"), "gl", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tests := []struct {
		lemma string
		want  float64
		ok    bool
	}{
		{"energie", 5, true},
		{"ÉNERGIE", 5, true},
		{"ガス", 7, true},
		{"カス", 0, false},
		{"エネルギー", 15023, true},
	}
	for _, tt := range tests {
		if f, ok := g.Frequency(tt.lemma); f != tt.want || ok != tt.ok {
			t.Errorf("Frequency(%q) = %v, %v; want %v, %v", tt.lemma, f, ok, tt.want, tt.ok)
		}
	}
}

func TestSynonymsAreSymmetric(t *testing.T) {
	s, err := LoadSynonyms(strings.NewReader("power\tenergy\tforce\n"), "syn", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Are("energy", "power") || !s.Are("Power", "force") || s.Are("energy", "force") {
		t.Fatalf("unexpected synonymy %v", s)
	}
}

func TestLoadRules(t *testing.T) {
	in := `
- name: NN-NPN
  source: N  N
  target: N P N
  constraints: ["s1=t3", "s2=t1"]
- name: AN-AAN
  source: A N
  target: A A N
  constraints: ["s1=t1", "s2=t3"]
`
	rules, err := LoadRules(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 2 || rules[0].Name != "NN-NPN" || rules[0].Source != "N N" {
		t.Fatalf("unexpected rules %+v", rules)
	}
	if rules[0].Kind != Insertion || len(rules[0].Constraints) != 2 || rules[0].Constraints[0] != (Constraint{1, 3}) {
		t.Errorf("unexpected first rule %+v", rules[0])
	}

	bad := []string{
		"- name: x\n  source: N\n  target: N\n  constraints: [\"s2=t1\"]\n",
		"- name: x\n  source: N\n  target: N\n  colour: red\n",
		"- name: x\n  source: N\n  target: N\n- name: x\n  source: A\n  target: A\n",
	}
	for _, in := range bad {
		if _, err := LoadRules(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestBuiltinResourcesLoad(t *testing.T) {
	for _, lang := range []string{"en", "ja"} {
		rc, err := Open(BuiltinLocator(lang + "/variation-rules.yaml"))
		if err != nil {
			t.Fatalf("%s rules: %v", lang, err)
		}
		if _, err := LoadRules(rc); err != nil {
			t.Errorf("%s rules: %v", lang, err)
		}
		rc.Close()

		rc, err = Open(BuiltinLocator(lang + "/derivation-rules.yaml"))
		if err != nil {
			t.Fatalf("%s derivations: %v", lang, err)
		}
		if _, err := LoadDerivationRules(rc); err != nil {
			t.Errorf("%s derivations: %v", lang, err)
		}
		rc.Close()
	}
}

func TestSuffixAndDerivationRules(t *testing.T) {
	if got, ok := (SuffixRule{From: "ies", To: "y"}).Apply("turbines"); ok {
		t.Errorf("unexpected rewrite %q", got)
	}
	if got, ok := (SuffixRule{From: "ies", To: "y"}).Apply("batteries"); !ok || got != "battery" {
		t.Errorf("Apply(batteries) = %q, %v", got, ok)
	}
	rules, err := LoadDerivationRules(strings.NewReader("- type: A N\n  derivate: ic\n  base: y\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if base, ok := rules[0].Base("economic"); !ok || base != "economy" {
		t.Errorf("Base(economic) = %q, %v", base, ok)
	}
	if rules[0].DerivateLabel != "A" || rules[0].BaseLabel != "N" {
		t.Errorf("unexpected labels %+v", rules[0])
	}
}

func TestLoadCompositions(t *testing.T) {
	comps, err := LoadCompositions(strings.NewReader("windmill\twind mill\nforehead\tforehead\nbroken\tbro ken x\n"), "c", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(comps) != 2 || len(comps["windmill"]) != 2 || len(comps["forehead"]) != 1 {
		t.Fatalf("unexpected compositions %v", comps)
	}
}
