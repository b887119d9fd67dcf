package termino

// IndexSpec describes a custom index: a name and a key function. A term may have several
// keys. Key functions must only read immutable term attributes (grouping key, words).
type IndexSpec struct {
	Name string
	Keys func(*Term) []string
}

const (
	LemmaLowerCase = "lemma-lower-case"
	WordLemma      = "word-lemma"
	PatternIndex   = "pattern"
)

// DefaultIndexes are registered on every terminology.
var DefaultIndexes = []IndexSpec{
	{Name: LemmaLowerCase, Keys: func(t *Term) []string { return []string{NormalizeLemma(t.Lemma())} }},
	{Name: WordLemma, Keys: func(t *Term) []string {
		keys := make([]string, 0, len(t.words))
		for _, w := range t.words {
			keys = append(keys, w.Lemma)
		}
		return keys
	}},
	{Name: PatternIndex, Keys: func(t *Term) []string { return []string{t.Pattern()} }},
}

type customIndex struct {
	spec    IndexSpec
	buckets map[string][]*Term
}

func newCustomIndex(spec IndexSpec) *customIndex {
	return &customIndex{spec: spec, buckets: make(map[string][]*Term)}
}

func (x *customIndex) keys(t *Term) []string {
	raw := x.spec.Keys(t)
	if len(raw) < 2 {
		return raw
	}
	seen := make(map[string]bool, len(raw))
	out := raw[:0:0]
	for _, k := range raw {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func (x *customIndex) add(t *Term) {
	for _, k := range x.keys(t) {
		x.buckets[k] = append(x.buckets[k], t)
	}
}

func (x *customIndex) remove(t *Term) {
	for _, k := range x.keys(t) {
		bucket := x.buckets[k]
		for i, other := range bucket {
			if other == t {
				bucket = append(bucket[:i:i], bucket[i+1:]...)
				break
			}
		}
		if len(bucket) == 0 {
			delete(x.buckets, k)
		} else {
			x.buckets[k] = bucket
		}
	}
}

func (x *customIndex) lookup(key string) []*Term {
	bucket := x.buckets[key]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*Term, len(bucket))
	copy(out, bucket)
	return out
}
