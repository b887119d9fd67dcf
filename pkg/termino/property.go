package termino

import (
	"fmt"
	"sort"
)

// TermProperty identifies a scored attribute of a term.
type TermProperty int

const (
	Frequency TermProperty = iota
	DocumentFrequency
	Specificity
	WRLog
	Rank
	Size
)

var termPropertyNames = map[TermProperty]string{
	Frequency:         "frequency",
	DocumentFrequency: "document-frequency",
	Specificity:       "specificity",
	WRLog:             "wr-log",
	Rank:              "rank",
	Size:              "size",
}

func (p TermProperty) String() string {
	if s, ok := termPropertyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// ParseTermProperty resolves a property by name.
func ParseTermProperty(s string) (TermProperty, error) {
	for p, name := range termPropertyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown term property %q", ErrConfiguration, s)
}

// UnmarshalText lets properties be decoded from configuration files.
func (p *TermProperty) UnmarshalText(b []byte) error {
	v, err := ParseTermProperty(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p TermProperty) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Inverted reports whether smaller values are better (rank 1 is the best rank, and
// size-based cleaning evicts terms above the cutoff).
func (p TermProperty) Inverted() bool {
	return p == Rank || p == Size
}

// Value returns the numeric value of the property for t.
func (p TermProperty) Value(t *Term) float64 {
	switch p {
	case Frequency:
		return float64(t.Frequency)
	case DocumentFrequency:
		return float64(t.DocumentFrequency)
	case Specificity:
		return t.Specificity
	case WRLog:
		return t.WRLog
	case Rank:
		return float64(t.Rank)
	case Size:
		return float64(t.Size())
	}
	return 0
}

// Better reports whether a is strictly better than b for this property.
func (p TermProperty) Better(a, b *Term) bool {
	if p.Inverted() {
		return p.Value(a) < p.Value(b)
	}
	return p.Value(a) > p.Value(b)
}

// SortBest sorts terms from best to worst value of p. The sort is stable, so ties
// keep their incoming order.
func (p TermProperty) SortBest(terms []*Term) {
	sort.SliceStable(terms, func(i, j int) bool { return p.Better(terms[i], terms[j]) })
}
