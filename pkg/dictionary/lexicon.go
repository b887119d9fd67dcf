package dictionary

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/japaniel/termgraph/pkg/resource"
)

// Lexicon is a word list with frequencies stored in a rune prefix trie. It is
// the dictionary the compound splitter checks candidate segments against.
// A Lexicon is not safe for concurrent mutation; build it first, then share it.
type Lexicon struct {
	root    *trieNode
	size    int
	maxFreq int
}

type trieNode struct {
	frequency int // -1 when no word ends here
	children  map[rune]*trieNode
}

func newTrieNode() *trieNode {
	return &trieNode{frequency: -1, children: map[rune]*trieNode{}}
}

// NewLexicon returns an empty lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{root: newTrieNode()}
}

// Add inserts a word; adding a known word sums the frequencies.
func (l *Lexicon) Add(word string, frequency int) {
	if word == "" {
		return
	}
	if frequency < 0 {
		frequency = 0
	}
	cur := l.root
	for _, r := range word {
		next, ok := cur.children[r]
		if !ok {
			next = newTrieNode()
			cur.children[r] = next
		}
		cur = next
	}
	if cur.frequency < 0 {
		cur.frequency = 0
		l.size++
	}
	cur.frequency += frequency
	if cur.frequency > l.maxFreq {
		l.maxFreq = cur.frequency
	}
}

func (l *Lexicon) node(s string) *trieNode {
	cur := l.root
	for _, r := range s {
		next, ok := cur.children[r]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Frequency reports the frequency of word, whether it is a strict prefix of a
// longer word, and whether it is a word at all.
func (l *Lexicon) Frequency(word string) (frequency int, isPrefix bool, exists bool) {
	n := l.node(word)
	if n == nil || n == l.root {
		return -1, n == l.root && len(l.root.children) > 0, false
	}
	return n.frequency, len(n.children) > 0, n.frequency >= 0
}

// Contains reports whether word is in the lexicon.
func (l *Lexicon) Contains(word string) bool {
	_, _, ok := l.Frequency(word)
	return ok
}

// WithPrefix returns up to limit words starting with prefix, in rune order.
// A limit <= 0 means no limit.
func (l *Lexicon) WithPrefix(prefix string, limit int) []string {
	n := l.node(prefix)
	if n == nil {
		return nil
	}
	var out []string
	var walk func(n *trieNode, acc []rune) bool
	walk = func(n *trieNode, acc []rune) bool {
		if n.frequency >= 0 && len(acc) > 0 {
			out = append(out, string(acc))
			if limit > 0 && len(out) >= limit {
				return false
			}
		}
		for _, r := range sortedRunes(n.children) {
			if !walk(n.children[r], append(acc, r)) {
				return false
			}
		}
		return true
	}
	walk(n, []rune(prefix))
	return out
}

// Size returns the number of distinct words.
func (l *Lexicon) Size() int { return l.size }

// MaxFrequency returns the highest word frequency.
func (l *Lexicon) MaxFrequency() int { return l.maxFreq }

func sortedRunes(m map[rune]*trieNode) []rune {
	out := make([]rune, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LoadLexicon reads "word" or "word<TAB>frequency" lines. Words without a
// frequency count as 1.
func LoadLexicon(r io.Reader) (*Lexicon, error) {
	lines, err := resource.ReadLines(r)
	if err != nil {
		return nil, err
	}
	l := NewLexicon()
	for _, line := range lines {
		word, freq, hasFreq := strings.Cut(line, "\t")
		f := 1
		if hasFreq {
			f, err = strconv.Atoi(strings.TrimSpace(freq))
			if err != nil {
				return nil, fmt.Errorf("lexicon entry %q: %w", line, err)
			}
		}
		l.Add(strings.TrimSpace(word), f)
	}
	return l, nil
}

// LexiconFromJMdict builds a lexicon from dictionary headwords. Common
// spellings weigh more than rare ones.
func LexiconFromJMdict(entries []JMdictEntry) *Lexicon {
	l := NewLexicon()
	add := func(els []JMdictElement) {
		for _, el := range els {
			f := 1
			if el.Common {
				f = 2
			}
			l.Add(el.Text, f)
		}
	}
	for _, e := range entries {
		add(e.Kanji)
		add(e.Kana)
	}
	return l
}
