package termino

import "log"

// TermPair is a resolved pair of a reference list.
type TermPair struct {
	Source *Term
	Target *Term
}

// ResolvePairs maps lemma pairs (e.g. a bilingual reference list) onto two terminologies
// through their lemma-lower-case index. When several terms share a lemma, the most
// frequent one wins. Pairs with an unknown side are skipped with a warning.
func ResolvePairs(source, target *Terminology, pairs [][2]string, logger *log.Logger) []TermPair {
	var out []TermPair
	for _, p := range pairs {
		sources := source.Lookup(LemmaLowerCase, NormalizeLemma(p[0]))
		if len(sources) == 0 {
			if logger != nil {
				logger.Printf("Ignoring ref line <%s %s> (source term not found in source terminology)", p[0], p[1])
			}
			continue
		}
		targets := target.Lookup(LemmaLowerCase, NormalizeLemma(p[1]))
		if len(targets) == 0 {
			if logger != nil {
				logger.Printf("Ignoring ref line <%s %s> (target term not found in target terminology)", p[0], p[1])
			}
			continue
		}
		SortByFrequencyDesc(sources)
		SortByFrequencyDesc(targets)
		out = append(out, TermPair{Source: sources[0], Target: targets[0]})
	}
	return out
}
