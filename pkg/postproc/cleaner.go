// Package postproc holds the passes that run once the terminology is built:
// cleaning, ranking and merging.
package postproc

import (
	"context"
	"fmt"
	"log"

	"github.com/japaniel/termgraph/pkg/termino"
)

// VariantScope decides which failing terms KeepVariants protects.
type VariantScope int

const (
	// Direct protects a term with an incoming variation from a term that stays.
	Direct VariantScope = iota
	// Transitive protects every term reachable through variations from a term that stays.
	Transitive
)

func (s VariantScope) String() string {
	if s == Transitive {
		return "transitive"
	}
	return "direct"
}

func (s *VariantScope) UnmarshalText(b []byte) error {
	switch string(b) {
	case "direct", "":
		*s = Direct
	case "transitive":
		*s = Transitive
	default:
		return fmt.Errorf("%w: unknown variant scope %q", termino.ErrConfiguration, b)
	}
	return nil
}

func (s VariantScope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Pass is a post-processing step over a terminology.
type Pass interface {
	Run(ctx context.Context, t *termino.Terminology) (int, error)
}

// passes reports whether term survives a cut at threshold on p.
func passes(p termino.TermProperty, term *termino.Term, threshold float64) bool {
	if p.Inverted() {
		return p.Value(term) <= threshold
	}
	return p.Value(term) >= threshold
}

// protected returns the failing terms that KeepVariants exempts.
func protected(t *termino.Terminology, failing map[*termino.Term]bool, scope VariantScope) map[*termino.Term]bool {
	keep := make(map[*termino.Term]bool)
	if scope == Direct {
		for term := range failing {
			for _, r := range t.RelationsTo(term.Key()) {
				if r.Type().IsVariation() && !failing[r.From()] {
					keep[term] = true
					break
				}
			}
		}
		return keep
	}

	var queue []*termino.Term
	for _, term := range t.Terms() {
		if !failing[term] {
			queue = append(queue, term)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, r := range t.RelationsFrom(cur.Key()) {
			to := r.To()
			if r.Type().IsVariation() && failing[to] && !keep[to] {
				keep[to] = true
				queue = append(queue, to)
			}
		}
	}
	return keep
}

// removeFailing deletes the failing terms, sparing the protected ones when
// keepVariants is set. Terms are removed in registration order.
func removeFailing(ctx context.Context, t *termino.Terminology, failing map[*termino.Term]bool, keepVariants bool, scope VariantScope) (int, error) {
	var keep map[*termino.Term]bool
	if keepVariants {
		keep = protected(t, failing, scope)
	}
	n := 0
	for _, term := range t.Terms() {
		if !failing[term] || keep[term] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := t.RemoveTerm(term.Key()); err != nil {
			return n, fmt.Errorf("remove %s: %w", term.Key(), err)
		}
		n++
	}
	return n, nil
}

// ThresholdCleaner removes the terms whose property value is below Threshold,
// or above it for inverted properties such as size.
type ThresholdCleaner struct {
	Property     termino.TermProperty
	Threshold    float64
	KeepVariants bool
	Scope        VariantScope
	Logger       *log.Logger
}

func (c *ThresholdCleaner) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	failing := make(map[*termino.Term]bool)
	for _, term := range t.Terms() {
		if !passes(c.Property, term, c.Threshold) {
			failing[term] = true
		}
	}
	before := t.Size()
	n, err := removeFailing(ctx, t, failing, c.KeepVariants, c.Scope)
	if c.Logger != nil {
		c.Logger.Printf("cleaning on %s (threshold %g): %d/%d terms removed", c.Property, c.Threshold, n, before)
	}
	return n, err
}

// TopNCleaner keeps the N best terms on Property. Ties keep registration order.
type TopNCleaner struct {
	Property     termino.TermProperty
	N            int
	KeepVariants bool
	Scope        VariantScope
	Logger       *log.Logger
}

func (c *TopNCleaner) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("%w: top-n cleaner needs a positive n, got %d", termino.ErrConfiguration, c.N)
	}
	return nil
}

func (c *TopNCleaner) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	terms := t.Terms()
	if len(terms) <= c.N {
		return 0, nil
	}
	c.Property.SortBest(terms)
	failing := make(map[*termino.Term]bool, len(terms)-c.N)
	for _, term := range terms[c.N:] {
		failing[term] = true
	}
	n, err := removeFailing(ctx, t, failing, c.KeepVariants, c.Scope)
	if c.Logger != nil {
		c.Logger.Printf("cleaning: kept top %d on %s, %d terms removed", c.N, c.Property, n)
	}
	return n, err
}

// MaxSizeCleaner bounds the terminology size by raising the cut on Property
// until at most MaxSize terms pass. Terms tied at the boundary go together.
type MaxSizeCleaner struct {
	Property termino.TermProperty
	MaxSize  int
	Logger   *log.Logger
}

func (c *MaxSizeCleaner) Validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: max-size cleaner needs a positive size, got %d", termino.ErrConfiguration, c.MaxSize)
	}
	return nil
}

func (c *MaxSizeCleaner) Run(ctx context.Context, t *termino.Terminology) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	terms := t.Terms()
	if len(terms) <= c.MaxSize {
		return 0, nil
	}
	c.Property.SortBest(terms)
	cut := terms[c.MaxSize]
	failing := make(map[*termino.Term]bool)
	for _, term := range terms {
		if !c.Property.Better(term, cut) {
			failing[term] = true
		}
	}
	n, err := removeFailing(ctx, t, failing, false, Direct)
	if c.Logger != nil {
		c.Logger.Printf("cleaning: max size %d on %s, %d terms removed", c.MaxSize, c.Property, n)
	}
	return n, err
}
