// Package analysis turns raw text into labelled tokens and spots the term
// candidates they contain.
package analysis

import (
	"strings"
	"unicode/utf8"
)

// Token represents a single analyzed unit of text.
type Token struct {
	Surface string // The text as it appears (e.g. "行っ")
	Lemma   string // The dictionary form (e.g. "行く")
	Reading string // The pronunciation (katakana), when the analyzer knows it
	// Label is the coarse syntactic category used by term patterns:
	// N noun, A adjective, P preposition or particle, D determiner, V verb,
	// C conjunction, S symbol and X anything else.
	Label         string
	PartsOfSpeech []string
	// Begin and End are rune offsets in the document.
	Begin int
	End   int
}

// Sentence represents a sentence containing tokens.
type Sentence struct {
	Text   string
	Begin  int
	Tokens []Token
}

// Analyzer splits a document into sentences of labelled tokens.
type Analyzer interface {
	AnalyzeDocument(text string) ([]Sentence, error)
}

func isDelimiter(r rune) bool {
	switch r {
	// 。(3002), ！(FF01), ？(FF1F)
	case '。', '！', '？', '\n', '.', '!', '?':
		return true
	}
	return false
}

// splitSentences cuts text after every sentence delimiter and returns each
// piece with its rune offset.
func splitSentences(text string) ([]string, []int) {
	var sentences []string
	var offsets []int
	var current strings.Builder
	start, pos := 0, 0
	for _, r := range text {
		current.WriteRune(r)
		pos++
		if isDelimiter(r) {
			sentences = append(sentences, current.String())
			offsets = append(offsets, start)
			current.Reset()
			start = pos
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
		offsets = append(offsets, start)
	}
	return sentences, offsets
}

// analyzeSentences runs fn on every non-blank sentence and shifts the token
// offsets to the document.
func analyzeSentences(text string, fn func(string) ([]Token, error)) ([]Sentence, error) {
	raw, offsets := splitSentences(text)
	var result []Sentence
	for i, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		tokens, err := fn(s)
		if err != nil {
			return nil, err
		}
		for j := range tokens {
			tokens[j].Begin += offsets[i]
			tokens[j].End += offsets[i]
		}
		result = append(result, Sentence{Text: s, Begin: offsets[i], Tokens: tokens})
	}
	return result, nil
}

// locate finds surface in text at or after the byte cursor and returns its
// rune span along with the advanced cursors.
func locate(text, surface string, byteCur, runeCur int) (begin, end, nextByte, nextRune int) {
	idx := strings.Index(text[byteCur:], surface)
	if idx < 0 {
		n := utf8.RuneCountInString(surface)
		return runeCur, runeCur + n, byteCur, runeCur
	}
	begin = runeCur + utf8.RuneCountInString(text[byteCur:byteCur+idx])
	end = begin + utf8.RuneCountInString(surface)
	return begin, end, byteCur + idx + len(surface), end
}
