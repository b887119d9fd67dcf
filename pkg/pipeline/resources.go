package pipeline

import (
	"fmt"
	"io"
	"log"

	"github.com/japaniel/termgraph/pkg/compost"
	"github.com/japaniel/termgraph/pkg/dictionary"
	"github.com/japaniel/termgraph/pkg/resource"
)

// Resources holds the loaded linguistic resources of a pipeline.
type Resources struct {
	Compost         compost.Resources
	General         *resource.GeneralLanguage
	Synonyms        resource.Synonyms
	VariationRules  []resource.Rule
	DerivationRules []resource.DerivationRule
	// Glossary is set when a JMdict file is configured.
	Glossary *dictionary.Glossary
}

func load[T any](l resource.Locator, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if !configured(l) {
		return zero, nil
	}
	rc, err := resource.Open(l)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	v, err := parse(rc)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", l, err)
	}
	return v, nil
}

func lines(r io.Reader) ([]string, error) { return resource.ReadLines(r) }

// LoadResources opens every configured resource. Malformed lines are reported
// through logger and skipped.
func LoadResources(rc ResourceConfig, logger *log.Logger) (*Resources, error) {
	var (
		res Resources
		err error
	)
	suffixRules := func(l resource.Locator) ([]resource.SuffixRule, error) {
		return load(l, func(r io.Reader) ([]resource.SuffixRule, error) {
			return resource.LoadSuffixRules(r, l.String(), logger)
		})
	}

	if rc.JMdict != "" {
		entries, err := dictionary.LoadJMdictSimplified(rc.JMdict)
		if err != nil {
			return nil, fmt.Errorf("load jmdict: %w", err)
		}
		res.Compost.Lexicon = dictionary.LexiconFromJMdict(entries)
		res.Glossary = dictionary.NewGlossary(entries)
		if logger != nil {
			logger.Printf("Loaded %d dictionary entries from %s", len(entries), rc.JMdict)
		}
	} else if res.Compost.Lexicon, err = load(rc.Lexicon, dictionary.LoadLexicon); err != nil {
		return nil, err
	}
	if res.Compost.Prefixes, err = load(rc.Prefixes, lines); err != nil {
		return nil, err
	}
	if res.Compost.Suffixes, err = load(rc.Suffixes, lines); err != nil {
		return nil, err
	}
	if res.Compost.StopSegments, err = load(rc.StopSegments, lines); err != nil {
		return nil, err
	}
	if res.Compost.Inflections, err = suffixRules(rc.Inflections); err != nil {
		return nil, err
	}
	if res.Compost.Transformations, err = suffixRules(rc.Transformations); err != nil {
		return nil, err
	}
	res.Compost.Compositions, err = load(rc.Compositions, func(r io.Reader) (map[string][]string, error) {
		return resource.LoadCompositions(r, rc.Compositions.String(), logger)
	})
	if err != nil {
		return nil, err
	}
	res.General, err = load(rc.GeneralLanguage, func(r io.Reader) (*resource.GeneralLanguage, error) {
		return resource.LoadGeneralLanguage(r, rc.GeneralLanguage.String(), logger)
	})
	if err != nil {
		return nil, err
	}
	res.Synonyms, err = load(rc.Synonyms, func(r io.Reader) (resource.Synonyms, error) {
		return resource.LoadSynonyms(r, rc.Synonyms.String(), logger)
	})
	if err != nil {
		return nil, err
	}
	if res.VariationRules, err = load(rc.VariationRules, resource.LoadRules); err != nil {
		return nil, err
	}
	if res.DerivationRules, err = load(rc.DerivationRules, resource.LoadDerivationRules); err != nil {
		return nil, err
	}
	return &res, nil
}
