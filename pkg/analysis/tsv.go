package analysis

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"
)

// WriteTokens dumps sentences as "surface<TAB>label<TAB>lemma" lines, one
// blank line after each sentence.
func WriteTokens(w io.Writer, sentences []Sentence) error {
	bw := bufio.NewWriter(w)
	for _, s := range sentences {
		for _, t := range s.Tokens {
			if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", t.Surface, t.Label, t.Lemma); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTokens reads a token dump back. Tokens and sentences are laid out
// separated by one space, so offsets refer to the text rebuilt that way. Lines with fewer than
// three columns are skipped with a warning.
func ReadTokens(r io.Reader, name string, logger *log.Logger) ([]Sentence, error) {
	var sentences []Sentence
	var cur Sentence
	var text strings.Builder
	pos, line := 0, 0

	flush := func() {
		if len(cur.Tokens) > 0 {
			cur.Text = text.String()
			sentences = append(sentences, cur)
			pos++
		}
		cur = Sentence{Begin: pos}
		text.Reset()
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		raw := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			flush()
			continue
		}
		cols := strings.Split(raw, "\t")
		if len(cols) < 3 || cols[0] == "" {
			if logger != nil {
				logger.Printf("%s:%d: expected surface, label and lemma, skipping", name, line)
			}
			continue
		}
		if len(cur.Tokens) > 0 {
			text.WriteByte(' ')
			pos++
		}
		n := utf8.RuneCountInString(cols[0])
		cur.Tokens = append(cur.Tokens, Token{Surface: cols[0], Label: cols[1], Lemma: cols[2], Begin: pos, End: pos + n})
		text.WriteString(cols[0])
		pos += n
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	flush()
	return sentences, nil
}
