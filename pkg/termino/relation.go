package termino

import (
	"fmt"
	"sort"
)

// RelationType is the type of an edge of the terminology multigraph.
type RelationType int

const (
	Derivation RelationType = iota
	Prefixation
	Graphical
	Syntactic
	Semantic
	Extension
	Inference
)

var relationTypeNames = map[RelationType]string{
	Derivation:  "derivation",
	Prefixation: "prefixation",
	Graphical:   "graphical",
	Syntactic:   "syntactic",
	Semantic:    "semantic",
	Extension:   "extension",
	Inference:   "inference",
}

func (t RelationType) String() string {
	if s, ok := relationTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("relation(%d)", int(t))
}

// IsVariation reports whether relations of this type link a term to one of its variants.
// Extension links a base to a longer term and is not a variation.
func (t RelationType) IsVariation() bool {
	return t != Extension
}

// ParseRelationType resolves a relation type by name.
func ParseRelationType(s string) (RelationType, error) {
	for t, name := range relationTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown relation type %q", ErrConfiguration, s)
}

// RelationProperty is a key of the relation property bag.
type RelationProperty string

const (
	IsMorphological RelationProperty = "is-morphological"
	IsDerivation    RelationProperty = "is-derivation"
	IsPrefixation   RelationProperty = "is-prefixation"
	IsSyntagmatic   RelationProperty = "is-syntagmatic"
	IsGraphical     RelationProperty = "is-graphical"
	IsSemantic      RelationProperty = "is-semantic"
	IsInferred      RelationProperty = "is-inferred"
	IsExtension     RelationProperty = "is-extension"

	VariationRule  RelationProperty = "variation-rule"
	VariationKind  RelationProperty = "variation-kind"
	Similarity     RelationProperty = "similarity"
	DerivationType RelationProperty = "derivation-type"
	PrefixForm     RelationProperty = "prefix"
	Synonym        RelationProperty = "synonym"
	InferredFrom   RelationProperty = "inferred-from"
)

// Properties is an open key/value bag. Values are bool, float64, int or string.
type Properties map[RelationProperty]any

// Relation is a directed, typed edge between two terms of the same terminology.
type Relation struct {
	id    uint64
	typ   RelationType
	from  *Term
	to    *Term
	props Properties
}

// ID is unique among the relations ever created by a terminology.
func (r *Relation) ID() uint64 { return r.id }

func (r *Relation) Type() RelationType { return r.typ }
func (r *Relation) From() *Term        { return r.from }
func (r *Relation) To() *Term          { return r.to }

// Set stores a property value.
func (r *Relation) Set(p RelationProperty, v any) {
	if r.props == nil {
		r.props = make(Properties)
	}
	r.props[p] = v
}

// IsSet reports whether the property has been set, whatever its value.
func (r *Relation) IsSet(p RelationProperty) bool {
	_, ok := r.props[p]
	return ok
}

// Get returns the raw property value.
func (r *Relation) Get(p RelationProperty) (any, bool) {
	v, ok := r.props[p]
	return v, ok
}

// Bool returns the boolean value of p; set is false when p was never set or is not a bool.
func (r *Relation) Bool(p RelationProperty) (value, set bool) {
	v, ok := r.props[p].(bool)
	return v, ok
}

// Float returns a numeric property as float64.
func (r *Relation) Float(p RelationProperty) (float64, bool) {
	switch v := r.props[p].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Text returns a string property.
func (r *Relation) Text(p RelationProperty) (string, bool) {
	v, ok := r.props[p].(string)
	return v, ok
}

// Properties returns a copy of the property bag.
func (r *Relation) Properties() Properties {
	out := make(Properties, len(r.props))
	for k, v := range r.props {
		out[k] = v
	}
	return out
}

// RelationPredicate filters relations.
type RelationPredicate func(*Relation) bool

// HasBooleanProperty matches relations where p is set and true.
func HasBooleanProperty(p RelationProperty) RelationPredicate {
	return func(r *Relation) bool {
		v, set := r.Bool(p)
		return set && v
	}
}

// OfType matches relations of any of the given types.
func OfType(types ...RelationType) RelationPredicate {
	return func(r *Relation) bool {
		return matchesType(r.typ, types)
	}
}

// Filter returns the relations accepted by pred.
func Filter(rels []*Relation, pred RelationPredicate) []*Relation {
	var out []*Relation
	for _, r := range rels {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortByFrequencyHarmonicMean orders relations by the descending harmonic mean
// of their endpoint frequencies.
func SortByFrequencyHarmonicMean(rels []*Relation) {
	hmean := func(r *Relation) float64 {
		a, b := float64(r.from.Frequency), float64(r.to.Frequency)
		if a+b == 0 {
			return 0
		}
		return 2 * a * b / (a + b)
	}
	sort.SliceStable(rels, func(i, j int) bool {
		return hmean(rels[i]) > hmean(rels[j])
	})
}

func matchesType(t RelationType, types []RelationType) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}
