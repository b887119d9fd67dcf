// Package compost decomposes single-word terms into morphological components
// (prefix, stems, suffix) by scoring every segmentation of the word against a
// lexicon and affix lists.
package compost

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/agext/levenshtein"

	"github.com/japaniel/termgraph/pkg/dictionary"
	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

// Resources are the word lists the splitter recognizes segments with.
type Resources struct {
	Lexicon  *dictionary.Lexicon
	Prefixes []string
	Suffixes []string
	// StopSegments are never accepted as a component.
	StopSegments []string
	// Inflections and Transformations rewrite a segment ending before the
	// lexicon lookup (e.g. "ies" -> "y").
	Inflections     []resource.SuffixRule
	Transformations []resource.SuffixRule
	// Compositions maps a word to its manual segmentation. A single-component
	// entry is an exception: the word is never split.
	Compositions map[string][]string
	Exceptions   []string
}

// Splitter finds the best segmentation of words.
type Splitter struct {
	cfg Config
	lex *dictionary.Lexicon

	prefixes   map[string]bool
	suffixes   map[string]bool
	stops      map[string]bool
	rules      []resource.SuffixRule
	manual     map[string][]string
	exceptions map[string]bool

	Logger *log.Logger
}

// New validates cfg and indexes the resources.
func New(cfg Config, res Resources) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lex := res.Lexicon
	if lex == nil {
		lex = dictionary.NewLexicon()
	}
	s := &Splitter{
		cfg:        cfg,
		lex:        lex,
		prefixes:   toSet(res.Prefixes),
		suffixes:   toSet(res.Suffixes),
		stops:      toSet(res.StopSegments),
		rules:      append(append([]resource.SuffixRule{}, res.Inflections...), res.Transformations...),
		manual:     make(map[string][]string, len(res.Compositions)),
		exceptions: toSet(res.Exceptions),
	}
	for w, comps := range res.Compositions {
		if len(comps) == 1 {
			s.exceptions[w] = true
			continue
		}
		s.manual[w] = comps
	}
	return s, nil
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// segment is a recognized slice of the word.
type segment struct {
	begin, end int // rune offsets
	substring  string
	lemma      string
	kind       termino.ComponentKind
	ling       float64
	freq       float64
	sim        float64
}

// Candidate is one scored segmentation.
type Candidate struct {
	Segments []termino.Component
	Score    float64
}

type splitState struct {
	s     *Splitter
	runes []rune
	known func(string) bool
	segs  map[[2]int]*segment
	memo  map[[2]int][][]*segment
}

// recognize returns the segment for runes[i:j], or nil when it is not a valid component.
func (st *splitState) recognize(i, j int) *segment {
	key := [2]int{i, j}
	if seg, ok := st.segs[key]; ok {
		return seg
	}
	seg := st.s.recognize(string(st.runes[i:j]), i, j, i == 0, j == len(st.runes), st.known)
	st.segs[key] = seg
	return seg
}

func (s *Splitter) recognize(sub string, begin, end int, initial, final bool, known func(string) bool) *segment {
	if s.stops[sub] {
		return nil
	}
	seg := &segment{begin: begin, end: end, substring: sub, lemma: sub, kind: termino.Stem, sim: 1}
	short := end-begin < s.cfg.MinComponentSize
	switch {
	case !final && s.prefixes[sub]:
		seg.kind, seg.ling, seg.freq = termino.Prefix, 1, 1
		return seg
	case final && !initial && s.suffixes[sub]:
		seg.kind, seg.ling, seg.freq = termino.Suffix, 1, 1
		return seg
	case short:
		return nil
	}
	if f, _, ok := s.lex.Frequency(sub); ok {
		seg.ling, seg.freq = 1, s.normFreq(f)
		return seg
	}
	for _, r := range s.rules {
		lemma, ok := r.Apply(sub)
		if !ok {
			continue
		}
		if f, _, ok := s.lex.Frequency(lemma); ok {
			seg.lemma, seg.ling, seg.freq = lemma, 1, s.normFreq(f)
			seg.sim = levenshtein.Similarity(sub, lemma, nil)
			return seg
		}
	}
	if known != nil && known(sub) {
		seg.ling, seg.freq = 0.5, 0
		return seg
	}
	return nil
}

func (s *Splitter) normFreq(f int) float64 {
	max := s.lex.MaxFrequency()
	if max <= 0 || f <= 0 {
		return 0
	}
	return math.Log1p(float64(f)) / math.Log1p(float64(max))
}

// segmentations enumerates the ways to cover runes[i:] with at most budget segments.
func (st *splitState) segmentations(i, budget int) [][]*segment {
	if budget == 0 {
		return nil
	}
	key := [2]int{i, budget}
	if res, ok := st.memo[key]; ok {
		return res
	}
	var out [][]*segment
	n := len(st.runes)
	for j := i + 1; j <= n; j++ {
		seg := st.recognize(i, j)
		if seg == nil {
			continue
		}
		if j == n {
			out = append(out, []*segment{seg})
			continue
		}
		for _, rest := range st.segmentations(j, budget-1) {
			out = append(out, append([]*segment{seg}, rest...))
		}
	}
	st.memo[key] = out
	return out
}

func (s *Splitter) score(segs []*segment) float64 {
	var ling, freq, sim float64
	for _, seg := range segs {
		ling += seg.ling
		freq += seg.freq
		sim += seg.sim
	}
	k := float64(len(segs))
	return s.cfg.Alpha*ling/k + s.cfg.Beta*freq/k + s.cfg.Gamma/k + s.cfg.Delta*sim/k
}

// Candidates returns every distinct segmentation of word, best first. known
// tells whether a string is an existing single-word term; it may be nil.
func (s *Splitter) Candidates(word string, known func(string) bool) []Candidate {
	st := &splitState{
		s:     s,
		runes: []rune(word),
		known: known,
		segs:  make(map[[2]int]*segment),
		memo:  make(map[[2]int][][]*segment),
	}
	all := st.segmentations(0, s.cfg.MaxComponentNum)
	type scored struct {
		segs  []*segment
		score float64
	}
	ranked := make([]scored, 0, len(all))
	for _, segs := range all {
		ranked = append(ranked, scored{segs: segs, score: s.score(segs)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if len(a.segs) != len(b.segs) {
			return len(a.segs) < len(b.segs)
		}
		return a.segs[0].end < b.segs[0].end
	})

	var out []Candidate
	var kept [][]*segment
	for _, r := range ranked {
		if s.nearDuplicate(r.segs, kept) {
			continue
		}
		kept = append(kept, r.segs)
		out = append(out, Candidate{Segments: toComponents(r.segs), Score: r.score})
	}
	return out
}

// nearDuplicate reports whether segs matches a kept candidate component by
// component at or above the segment similarity threshold.
func (s *Splitter) nearDuplicate(segs []*segment, kept [][]*segment) bool {
	for _, k := range kept {
		if len(k) != len(segs) {
			continue
		}
		same := true
		for i := range k {
			if levenshtein.Similarity(k[i].lemma, segs[i].lemma, nil) < s.cfg.SegmentSimilarityThreshold {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func toComponents(segs []*segment) []termino.Component {
	out := make([]termino.Component, len(segs))
	for i, seg := range segs {
		out[i] = termino.Component{Substring: seg.substring, Lemma: seg.lemma, Begin: seg.begin, End: seg.end, Kind: seg.kind}
	}
	return out
}

// Split returns the structure of word, or false when the word is not a
// compound. Manual compositions and exceptions bypass scoring.
func (s *Splitter) Split(word string, known func(string) bool) (*termino.WordStructure, bool) {
	if s.exceptions[word] {
		return nil, false
	}
	if comps, ok := s.manual[word]; ok {
		return s.manualStructure(comps), true
	}
	cands := s.Candidates(word, known)
	if len(cands) == 0 {
		return nil, false
	}
	best := cands[0]
	if len(best.Segments) < 2 || best.Score <= s.cfg.ScoreThreshold {
		return nil, false
	}
	return &termino.WordStructure{Components: best.Segments, Score: best.Score}, true
}

func (s *Splitter) manualStructure(comps []string) *termino.WordStructure {
	ws := &termino.WordStructure{Score: 1, Manual: true}
	pos := 0
	for i, c := range comps {
		n := len([]rune(c))
		kind := termino.Stem
		switch {
		case i < len(comps)-1 && s.prefixes[c]:
			kind = termino.Prefix
		case i == len(comps)-1 && i > 0 && s.suffixes[c]:
			kind = termino.Suffix
		}
		ws.Components = append(ws.Components, termino.Component{Substring: c, Lemma: c, Begin: pos, End: pos + n, Kind: kind})
		pos += n
	}
	return ws
}

// Run annotates the single-word terms of t with their morphology and returns
// the number of compounds found. Terms are never created or removed.
func (s *Splitter) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	var words []*termino.Term
	for _, term := range t.Terms() {
		if term.IsSingleWord() {
			words = append(words, term)
		}
	}
	known := func(sub string) bool {
		for _, term := range t.Lookup(termino.LemmaLowerCase, termino.NormalizeLemma(sub)) {
			if term.IsSingleWord() {
				return true
			}
		}
		return false
	}
	n := 0
	for _, term := range words {
		if err := ctx.Err(); err != nil {
			return n, fmt.Errorf("compost: %w", err)
		}
		lemma := term.Words()[0].Lemma
		ws, ok := s.Split(lemma, func(sub string) bool { return sub != lemma && known(sub) })
		if !ok {
			continue
		}
		term.Morphology = ws
		n++
	}
	if s.Logger != nil {
		s.Logger.Printf("compost: %d compounds among %d single-word terms", n, len(words))
	}
	return n, nil
}
