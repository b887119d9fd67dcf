package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reWord = regexp.MustCompile(`[\p{L}\p{N}]+(?:[-'][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

	closedClasses = map[string]string{
		"the": "D", "a": "D", "an": "D", "this": "D", "that": "D", "these": "D", "those": "D",
		"its": "D", "their": "D", "each": "D", "every": "D", "some": "D", "any": "D",
		"of": "P", "in": "P", "on": "P", "for": "P", "with": "P", "to": "P", "by": "P",
		"from": "P", "at": "P", "into": "P", "over": "P", "under": "P", "between": "P",
		"and": "C", "or": "C", "but": "C", "nor": "C",
		"is": "V", "are": "V", "was": "V", "were": "V", "be": "V", "been": "V", "has": "V",
		"have": "V", "had": "V", "can": "V", "may": "V", "will": "V", "does": "V", "do": "V",
	}
	adjectiveSuffixes = []string{"ical", "ial", "al", "ic", "ive", "ous", "ary", "able", "ible", "less", "ful"}
)

// Simple is a rule-based analyzer for space-separated languages. It knows the
// closed word classes and guesses adjectives from their suffix; every other
// word is a noun. Labels overrides the guess for known lemmas.
type Simple struct {
	Labels map[string]string
}

func simpleLemma(word string) string {
	w := strings.ToLower(word)
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

func (a *Simple) label(lower, lemma string) string {
	if l, ok := a.Labels[lemma]; ok {
		return l
	}
	if l, ok := closedClasses[lower]; ok {
		return l
	}
	if r := []rune(lower); len(r) == 1 && !unicode.IsLetter(r[0]) && !unicode.IsDigit(r[0]) {
		return "S"
	}
	for _, s := range adjectiveSuffixes {
		if strings.HasSuffix(lower, s) && len(lower) > len(s)+2 {
			return "A"
		}
	}
	return "N"
}

// Analyze tokenizes text. Offsets are relative to text.
func (a *Simple) Analyze(text string) ([]Token, error) {
	var result []Token
	byteCur, runeCur := 0, 0
	for _, surface := range reWord.FindAllString(text, -1) {
		begin, end, nb, nr := locate(text, surface, byteCur, runeCur)
		byteCur, runeCur = nb, nr
		lower := strings.ToLower(surface)
		lemma := lower
		if _, closed := closedClasses[lower]; !closed {
			lemma = simpleLemma(surface)
		}
		result = append(result, Token{
			Surface: surface,
			Lemma:   lemma,
			Label:   a.label(lower, lemma),
			Begin:   begin,
			End:     end,
		})
	}
	return result, nil
}

func (a *Simple) AnalyzeDocument(text string) ([]Sentence, error) {
	return analyzeSentences(text, a.Analyze)
}
