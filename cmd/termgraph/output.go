package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/japaniel/termgraph/pkg/dictionary"
	"github.com/japaniel/termgraph/pkg/pipeline"
	"github.com/japaniel/termgraph/pkg/termino"
)

const maxGlosses = 3

// gloss looks the term up as one word first, then word by word.
func gloss(g *dictionary.Glossary, term *termino.Term) string {
	words := term.Words()
	lemmas := make([]string, len(words))
	for i, w := range words {
		lemmas[i] = w.Lemma
	}
	if s := g.Gloss(strings.Join(lemmas, ""), maxGlosses); s != "" || len(words) == 1 {
		return s
	}
	parts := make([]string, len(lemmas))
	for i, l := range lemmas {
		parts[i] = g.Gloss(l, 1)
		if parts[i] == "" {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, " + ")
}

func printTerms(out io.Writer, res *pipeline.Result, top int, glossary *dictionary.Glossary, variants bool) {
	if len(res.Ranked) == 0 {
		fmt.Fprintln(out, "no terms")
		return
	}
	scored := make(map[*termino.Term]*termino.ScoredTerm)
	for _, st := range termino.Project(res.Terminology) {
		scored[st.Term] = st
	}

	headers := []string{"RANK", "TERM", "PILOT", "FREQ", "DF", "SPEC", "VARIANTS"}
	if glossary != nil {
		headers = append(headers, "GLOSS")
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for i, term := range res.Ranked {
		if top > 0 && i >= top {
			break
		}
		st := scored[term]
		row := []string{
			strconv.Itoa(term.Rank),
			term.Key(),
			term.Pilot(),
			strconv.Itoa(term.Frequency),
			strconv.Itoa(term.DocumentFrequency),
			strconv.FormatFloat(term.Specificity, 'f', 3, 64),
			strconv.Itoa(len(st.Variations)),
		}
		if glossary != nil {
			row = append(row, gloss(glossary, term))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
		if variants && len(st.Variations) > 0 {
			rels := make([]*termino.Relation, len(st.Variations))
			for j, v := range st.Variations {
				rels[j] = v.Relation
			}
			termino.SortByFrequencyHarmonicMean(rels)
			for _, r := range rels {
				fmt.Fprintf(w, "\t  %s\t%s\t%d\t\t\t\n", r.Type(), r.To().Pilot(), r.To().Frequency)
			}
		}
	}
	w.Flush()
}

func printPairs(out io.Writer, pairs []termino.TermPair) {
	if len(pairs) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tTARGET\tSOURCE_FREQ\tTARGET_FREQ")
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.Source.Pilot(), p.Target.Pilot(), p.Source.Frequency, p.Target.Frequency)
	}
	w.Flush()
}

type jsonVariation struct {
	Type string `json:"type"`
	To   string `json:"to"`
}

type jsonTerm struct {
	Rank              int             `json:"rank"`
	Key               string          `json:"key"`
	Pilot             string          `json:"pilot"`
	Frequency         int             `json:"frequency"`
	DocumentFrequency int             `json:"documentFrequency"`
	Specificity       float64         `json:"specificity"`
	Variations        []jsonVariation `json:"variations,omitempty"`
	Definitions       json.RawMessage `json:"definitions,omitempty"`
}

func printJSON(out io.Writer, res *pipeline.Result, top int, glossary *dictionary.Glossary) error {
	var terms []jsonTerm
	for i, term := range res.Ranked {
		if top > 0 && i >= top {
			break
		}
		jt := jsonTerm{
			Rank:              term.Rank,
			Key:               term.Key(),
			Pilot:             term.Pilot(),
			Frequency:         term.Frequency,
			DocumentFrequency: term.DocumentFrequency,
			Specificity:       term.Specificity,
		}
		for _, r := range res.Terminology.RelationsFrom(term.Key()) {
			jt.Variations = append(jt.Variations, jsonVariation{Type: r.Type().String(), To: r.To().Key()})
		}
		if glossary != nil {
			defs, err := glossary.GetDefinitionsJSON(term.Pilot(), strings.ReplaceAll(term.Lemma(), " ", ""), "")
			if err != nil {
				return err
			}
			if defs != "" {
				jt.Definitions = json.RawMessage(defs)
			}
		}
		terms = append(terms, jt)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(terms)
}
