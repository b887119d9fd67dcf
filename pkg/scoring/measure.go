package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/japaniel/termgraph/pkg/termino"
)

// Table is a 2x2 contingency table for a pair (x, y): A counts x with y, B x
// without y, C y without x and D neither.
type Table struct {
	A, B, C, D float64
}

// N is the table total.
func (t Table) N() float64 { return t.A + t.B + t.C + t.D }

// Measure rates the association strength of a pair.
type Measure func(Table) float64

const DefaultMeasure = "log-likelihood"

var measures = map[string]Measure{
	"log-likelihood":     LogLikelihood,
	"mutual-information": MutualInformation,
	"dice":               Dice,
	"jaccard":            Jaccard,
}

// MeasureByName resolves an association measure. An empty name selects the default.
func MeasureByName(name string) (Measure, error) {
	if name == "" {
		name = DefaultMeasure
	}
	m, ok := measures[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown association measure %q (known: %v)", termino.ErrConfiguration, name, MeasureNames())
	}
	return m, nil
}

// MeasureNames lists the registered measures in sorted order.
func MeasureNames() []string {
	names := make([]string, 0, len(measures))
	for n := range measures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func LogLikelihood(t Table) float64 {
	n := t.N()
	if n == 0 {
		return 0
	}
	expected := func(row, col float64) float64 { return row * col / n }
	return 2 * (xlogy(t.A, expected(t.A+t.B, t.A+t.C)) +
		xlogy(t.B, expected(t.A+t.B, t.B+t.D)) +
		xlogy(t.C, expected(t.C+t.D, t.A+t.C)) +
		xlogy(t.D, expected(t.C+t.D, t.B+t.D)))
}

// MutualInformation is the pointwise mutual information in bits.
func MutualInformation(t Table) float64 {
	if t.A == 0 {
		return math.Inf(-1)
	}
	return math.Log2(t.A * t.N() / ((t.A + t.B) * (t.A + t.C)))
}

func Dice(t Table) float64 {
	if t.A == 0 {
		return 0
	}
	return 2 * t.A / (2*t.A + t.B + t.C)
}

func Jaccard(t Table) float64 {
	if t.A == 0 {
		return 0
	}
	return t.A / (t.A + t.B + t.C)
}
