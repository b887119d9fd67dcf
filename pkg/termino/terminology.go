package termino

import (
	"fmt"
	"sort"

	"github.com/japaniel/termgraph/pkg/occurrence"
)

// Terminology owns the term registry, the relation multigraph and the custom indexes.
// It is not safe for concurrent mutation: passes run one at a time against it.
type Terminology struct {
	name  string
	lang  string
	store occurrence.Store

	terms    map[string]*Term
	termSeq  uint64
	relSeq   uint64
	out      map[*Term][]*Relation
	in       map[*Term][]*Relation
	relCount int

	indexes    map[string]*customIndex
	indexNames []string
}

// New creates an empty terminology with the default indexes plus the given ones.
func New(name, lang string, store occurrence.Store, indexes ...IndexSpec) *Terminology {
	t := &Terminology{
		name:    name,
		lang:    lang,
		store:   store,
		terms:   make(map[string]*Term),
		out:     make(map[*Term][]*Relation),
		in:      make(map[*Term][]*Relation),
		indexes: make(map[string]*customIndex),
	}
	for _, spec := range append(append([]IndexSpec{}, DefaultIndexes...), indexes...) {
		if _, ok := t.indexes[spec.Name]; ok {
			continue
		}
		t.indexes[spec.Name] = newCustomIndex(spec)
		t.indexNames = append(t.indexNames, spec.Name)
	}
	return t
}

func (t *Terminology) Name() string            { return t.name }
func (t *Terminology) Lang() string            { return t.lang }
func (t *Terminology) Store() occurrence.Store { return t.store }

// Size returns the number of terms.
func (t *Terminology) Size() int { return len(t.terms) }

// RelationCount returns the number of relations, counting duplicate edges separately.
func (t *Terminology) RelationCount() int { return t.relCount }

// AddTerm registers a term. It fails with ErrDuplicateKey when the key is taken.
func (t *Terminology) AddTerm(term *Term) error {
	if _, ok := t.terms[term.key]; ok {
		return fmt.Errorf("add term %q: %w", term.key, ErrDuplicateKey)
	}
	t.termSeq++
	term.seq = t.termSeq
	t.terms[term.key] = term
	for _, name := range t.indexNames {
		t.indexes[name].add(term)
	}
	return nil
}

// Term returns the term registered under key.
func (t *Terminology) Term(key string) (*Term, bool) {
	term, ok := t.terms[key]
	return term, ok
}

// Contains reports whether key is registered.
func (t *Terminology) Contains(key string) bool {
	_, ok := t.terms[key]
	return ok
}

// Terms returns all terms in insertion order.
func (t *Terminology) Terms() []*Term {
	out := make([]*Term, 0, len(t.terms))
	for _, term := range t.terms {
		out = append(out, term)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// RemoveTerm removes the term and every relation incident to it. It returns the number
// of relations removed.
func (t *Terminology) RemoveTerm(key string) (int, error) {
	term, ok := t.terms[key]
	if !ok {
		return 0, fmt.Errorf("remove term %q: %w", key, ErrNotFound)
	}
	removed := make(map[uint64]bool)
	for _, r := range t.out[term] {
		removed[r.id] = true
		if r.to != term {
			t.in[r.to] = without(t.in[r.to], r)
		}
	}
	for _, r := range t.in[term] {
		if removed[r.id] {
			continue
		}
		removed[r.id] = true
		t.out[r.from] = without(t.out[r.from], r)
	}
	delete(t.out, term)
	delete(t.in, term)
	delete(t.terms, key)
	for _, name := range t.indexNames {
		t.indexes[name].remove(term)
	}
	t.relCount -= len(removed)
	return len(removed), nil
}

// AddRelation creates a new edge between two registered terms. Identical edges are
// never merged.
func (t *Terminology) AddRelation(typ RelationType, fromKey, toKey string, props Properties) (*Relation, error) {
	from, ok := t.terms[fromKey]
	if !ok {
		return nil, fmt.Errorf("add %s relation from %q: %w", typ, fromKey, ErrDanglingEndpoint)
	}
	to, ok := t.terms[toKey]
	if !ok {
		return nil, fmt.Errorf("add %s relation to %q: %w", typ, toKey, ErrDanglingEndpoint)
	}
	t.relSeq++
	r := &Relation{id: t.relSeq, typ: typ, from: from, to: to, props: make(Properties, len(props))}
	for k, v := range props {
		r.props[k] = v
	}
	t.out[from] = append(t.out[from], r)
	t.in[to] = append(t.in[to], r)
	t.relCount++
	return r, nil
}

// RemoveRelation removes a single edge.
func (t *Terminology) RemoveRelation(r *Relation) error {
	outs := t.out[r.from]
	idx := -1
	for i, o := range outs {
		if o == r {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("remove relation %d: %w", r.id, ErrNotFound)
	}
	t.out[r.from] = without(outs, r)
	t.in[r.to] = without(t.in[r.to], r)
	t.relCount--
	return nil
}

// RelationsFrom returns the outgoing edges of key, optionally restricted to some types.
func (t *Terminology) RelationsFrom(key string, types ...RelationType) []*Relation {
	term, ok := t.terms[key]
	if !ok {
		return nil
	}
	return filterTypes(t.out[term], types)
}

// RelationsTo returns the incoming edges of key, optionally restricted to some types.
func (t *Terminology) RelationsTo(key string, types ...RelationType) []*Relation {
	term, ok := t.terms[key]
	if !ok {
		return nil
	}
	return filterTypes(t.in[term], types)
}

// Relations returns every edge, grouped by source term in insertion order.
func (t *Terminology) Relations(types ...RelationType) []*Relation {
	var out []*Relation
	for _, term := range t.Terms() {
		out = append(out, filterTypes(t.out[term], types)...)
	}
	return out
}

// Lookup returns the terms sharing key in the named custom index, in insertion order.
// Unknown index names yield nil.
func (t *Terminology) Lookup(index, key string) []*Term {
	x, ok := t.indexes[index]
	if !ok {
		return nil
	}
	return x.lookup(key)
}

// HasIndex reports whether an index with that name is registered.
func (t *Terminology) HasIndex(name string) bool {
	_, ok := t.indexes[name]
	return ok
}

// IndexKeys returns the keys currently present in an index.
func (t *Terminology) IndexKeys(index string) []string {
	x, ok := t.indexes[index]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(x.buckets))
	for k := range x.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func filterTypes(rels []*Relation, types []RelationType) []*Relation {
	out := make([]*Relation, 0, len(rels))
	for _, r := range rels {
		if matchesType(r.typ, types) {
			out = append(out, r)
		}
	}
	return out
}

func without(rels []*Relation, r *Relation) []*Relation {
	for i, o := range rels {
		if o == r {
			return append(rels[:i:i], rels[i+1:]...)
		}
	}
	return rels
}
