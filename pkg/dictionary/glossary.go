package dictionary

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// Glossary looks up dictionary entries for analyzed words. It annotates
// extracted Japanese terms with their English glosses.
type Glossary struct {
	// Key: string (Kanji or Kana), Value: List of matching JMdictEntry.
	// The index is read concurrently; mu guards it.
	mu    sync.RWMutex
	index map[string][]JMdictEntry
}

// NewGlossary builds an in-memory index of the provided dictionary.
func NewGlossary(entries []JMdictEntry) *Glossary {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			idx[k.Text] = append(idx[k.Text], e)
		}
	}
	return &Glossary{index: idx}
}

// Lookup finds matching entries for a given word, lemma, and pronunciation.
func (g *Glossary) Lookup(word, lemma, pronunciation string) []JMdictEntry {
	return g.findMatches(word, lemma, pronunciation)
}

// Gloss returns up to max English glosses for a lemma, joined by "; ".
func (g *Glossary) Gloss(lemma string, max int) string {
	var glosses []string
	for _, e := range g.findMatches(lemma, lemma, "") {
		for _, s := range e.Sense {
			for _, gl := range s.Gloss {
				if gl.Lang != "" && gl.Lang != "eng" {
					continue
				}
				glosses = append(glosses, gl.Text)
				if max > 0 && len(glosses) >= max {
					return strings.Join(glosses, "; ")
				}
			}
		}
	}
	return strings.Join(glosses, "; ")
}

// GetDefinitionsJSON returns the JSON string of definitions for the given word details.
func (g *Glossary) GetDefinitionsJSON(word, lemma, pronunciation string) (string, error) {
	matches := g.findMatches(word, lemma, pronunciation)
	if len(matches) == 0 {
		return "", nil
	}
	return FormatDefinitions(matches)
}

func (g *Glossary) findMatches(word, lemma, pronunciation string) []JMdictEntry {
	// Exact match on the surface, then on the lemma; readings filter the result.
	candidates := make(map[string]JMdictEntry) // dedupe by entry id

	search := func(term string) {
		if term == "" {
			return
		}
		g.mu.RLock()
		entries, ok := g.index[term]
		g.mu.RUnlock()
		if ok {
			for _, e := range entries {
				candidates[e.Id] = e
			}
		}
	}

	search(word)
	search(lemma)

	var results []JMdictEntry
	for _, entry := range candidates {
		if isMatch(entry, word, lemma, pronunciation) {
			results = append(results, entry)
		}
	}

	// Sort results deterministically to ensure consistent behavior.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})

	return results
}

func isMatch(entry JMdictEntry, word, lemma, pronunciation string) bool {
	// A match needs the text in a kanji or kana element and, when a
	// pronunciation is known, a kana element with that reading.
	hasText := false
	for _, k := range entry.Kanji {
		if k.Text == word || k.Text == lemma {
			hasText = true
			break
		}
	}
	for _, k := range entry.Kana {
		if k.Text == word || k.Text == lemma {
			hasText = true
			break
		}
	}
	if !hasText {
		return false
	}

	if pronunciation == "" {
		return true
	}

	normalizedPron := ToHiragana(pronunciation)
	for _, k := range entry.Kana {
		if ToHiragana(k.Text) == normalizedPron {
			return true
		}
	}
	return false
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// FormatDefinitions formats the entries into a JSON string.
func FormatDefinitions(entries []JMdictEntry) (string, error) {
	var defs []DefinitionEntry

	for _, e := range entries {
		var senses []string
		var poses []string

		for _, s := range e.Sense {
			for _, g := range s.Gloss {
				senses = append(senses, g.Text)
			}
			poses = append(poses, s.PartOfSpeech...)
		}
		defs = append(defs, DefinitionEntry{
			Senses: senses,
			POS:    poses,
		})
	}

	bytes, err := json.Marshal(defs)
	return string(bytes), err
}
