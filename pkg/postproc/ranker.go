package postproc

import (
	"fmt"
	"sort"

	"github.com/japaniel/termgraph/pkg/termino"
)

// Ranker numbers the terms 1..n by Property. Ties keep registration order.
type Ranker struct {
	Property   termino.TermProperty
	Descending bool
}

func (r *Ranker) Validate() error {
	if r.Property == termino.Rank {
		return fmt.Errorf("%w: cannot rank on the rank property", termino.ErrConfiguration)
	}
	return nil
}

// Run assigns the ranks and returns the terms in rank order.
func (r *Ranker) Run(t *termino.Terminology) ([]*termino.Term, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	terms := t.Terms()
	sort.SliceStable(terms, func(i, j int) bool {
		a, b := r.Property.Value(terms[i]), r.Property.Value(terms[j])
		if r.Descending {
			return a > b
		}
		return a < b
	})
	for i, term := range terms {
		term.Rank = i + 1
	}
	return terms, nil
}
