package resource

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// VariationKind describes the structural change a rule allows.
type VariationKind string

const (
	Insertion    VariationKind = "insertion"
	Deletion     VariationKind = "deletion"
	Substitution VariationKind = "substitution"
	Permutation  VariationKind = "permutation"
)

// Constraint ties source word S (1-based) to target word T: their lemmas must match.
type Constraint struct {
	Source int
	Target int
}

// Rule is one syntactic variation rule. Source and Target are label patterns
// such as "N N" and "N P N".
type Rule struct {
	Name        string        `yaml:"name"`
	Source      string        `yaml:"source"`
	Target      string        `yaml:"target"`
	Kind        VariationKind `yaml:"kind"`
	Constraints []Constraint  `yaml:"-"`

	RawConstraints []string `yaml:"constraints"`
}

// SourceSize is the number of words of the source pattern.
func (r Rule) SourceSize() int { return len(strings.Fields(r.Source)) }

// TargetSize is the number of words of the target pattern.
func (r Rule) TargetSize() int { return len(strings.Fields(r.Target)) }

// parseConstraint reads "s1=t3".
func parseConstraint(s string) (Constraint, error) {
	left, right, ok := strings.Cut(strings.ReplaceAll(s, " ", ""), "=")
	if !ok || !strings.HasPrefix(left, "s") || !strings.HasPrefix(right, "t") {
		return Constraint{}, fmt.Errorf("constraint %q: expected s<i>=t<j>", s)
	}
	si, err1 := strconv.Atoi(left[1:])
	ti, err2 := strconv.Atoi(right[1:])
	if err1 != nil || err2 != nil || si < 1 || ti < 1 {
		return Constraint{}, fmt.Errorf("constraint %q: bad word index", s)
	}
	return Constraint{Source: si, Target: ti}, nil
}

func (r *Rule) compile() error {
	if r.Name == "" {
		return fmt.Errorf("rule without name")
	}
	src, dst := r.SourceSize(), r.TargetSize()
	if src == 0 || dst == 0 {
		return fmt.Errorf("rule %s: source and target patterns are required", r.Name)
	}
	r.Source = strings.Join(strings.Fields(r.Source), " ")
	r.Target = strings.Join(strings.Fields(r.Target), " ")
	r.Constraints = r.Constraints[:0]
	for _, raw := range r.RawConstraints {
		c, err := parseConstraint(raw)
		if err != nil {
			return fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if c.Source > src || c.Target > dst {
			return fmt.Errorf("rule %s: constraint %q out of pattern bounds", r.Name, raw)
		}
		r.Constraints = append(r.Constraints, c)
	}
	if r.Kind == "" {
		r.Kind = r.inferKind()
	}
	switch r.Kind {
	case Insertion, Deletion, Substitution, Permutation:
	default:
		return fmt.Errorf("rule %s: unknown kind %q", r.Name, r.Kind)
	}
	return nil
}

func (r Rule) inferKind() VariationKind {
	src, dst := r.SourceSize(), r.TargetSize()
	switch {
	case dst > src:
		return Insertion
	case dst < src:
		return Deletion
	}
	for _, c := range r.Constraints {
		if c.Source != c.Target {
			return Permutation
		}
	}
	return Substitution
}

// LoadRules reads an ordered YAML rule list. Rule order is significant: the
// first matching rule wins.
func LoadRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	seen := make(map[string]bool, len(rules))
	for i := range rules {
		if err := rules[i].compile(); err != nil {
			return nil, err
		}
		if seen[rules[i].Name] {
			return nil, fmt.Errorf("duplicate rule name %q", rules[i].Name)
		}
		seen[rules[i].Name] = true
	}
	return rules, nil
}

// DerivationRule links a derived word to its base: a word labelled
// DerivateLabel ending with DerivateSuffix derives from the word labelled
// BaseLabel obtained by swapping the suffix for BaseSuffix.
type DerivationRule struct {
	Type           string `yaml:"type"`
	DerivateSuffix string `yaml:"derivate"`
	BaseSuffix     string `yaml:"base"`

	DerivateLabel string `yaml:"-"`
	BaseLabel     string `yaml:"-"`
}

// Base returns the base lemma of a derivate lemma.
func (d DerivationRule) Base(lemma string) (string, bool) {
	if !strings.HasSuffix(lemma, d.DerivateSuffix) || len(lemma) == len(d.DerivateSuffix) {
		return "", false
	}
	return strings.TrimSuffix(lemma, d.DerivateSuffix) + d.BaseSuffix, true
}

// LoadDerivationRules reads a YAML list of derivation rules whose type is
// "<derivate label> <base label>".
func LoadDerivationRules(r io.Reader) ([]DerivationRule, error) {
	var rules []DerivationRule
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode derivation rules: %w", err)
	}
	for i := range rules {
		labels := strings.Fields(rules[i].Type)
		if len(labels) != 2 || rules[i].DerivateSuffix == "" {
			return nil, fmt.Errorf("derivation rule %d: expected type \"<derivate> <base>\" and a derivate suffix", i+1)
		}
		rules[i].DerivateLabel, rules[i].BaseLabel = labels[0], labels[1]
	}
	return rules, nil
}
