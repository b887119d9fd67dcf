package resource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/japaniel/termgraph/pkg/termino"
)

// ErrMalformedRecord marks a resource line that was skipped. It is only ever
// reported through the logger: a bad line never fails a load.
var ErrMalformedRecord = errors.New("malformed record")

func warn(logger *log.Logger, name string, line int, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf("%s:%d: %v: %s", name, line, ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// scanLines calls fn for every non-blank line that does not start with '#'.
// Only line endings are stripped so that empty trailing columns survive.
func scanLines(r io.Reader, fn func(n int, line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fn(n, line)
	}
	return sc.Err()
}

// ReadLines returns the trimmed non-comment lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	err := scanLines(r, func(_ int, line string) {
		out = append(out, strings.TrimSpace(line))
	})
	return out, err
}

// Record is one tab-separated line with its 1-based line number.
type Record struct {
	Line   int
	Fields []string
}

// ReadTable splits tab-separated records. Records with fewer than cols columns
// are skipped with a warning; extra columns are kept.
func ReadTable(r io.Reader, name string, cols int, logger *log.Logger) ([]Record, error) {
	var out []Record
	err := scanLines(r, func(n int, line string) {
		fields := strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < cols {
			warn(logger, name, n, "expected %d columns, got %d", cols, len(fields))
			return
		}
		out = append(out, Record{Line: n, Fields: fields})
	})
	return out, err
}

// ReadPairs reads a two-column reference list. Single-column lines are skipped
// and lines with more than two columns are truncated, both with a warning.
func ReadPairs(r io.Reader, name string, logger *log.Logger) ([][2]string, error) {
	var out [][2]string
	err := scanLines(r, func(n int, line string) {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		switch {
		case len(fields) < 2:
			if logger != nil {
				logger.Printf("%s:%d: skipping line with one column: %q", name, n, line)
			}
			return
		case len(fields) > 2:
			if logger != nil {
				logger.Printf("%s:%d: line has %d columns, keeping the first two", name, n, len(fields))
			}
		}
		out = append(out, [2]string{strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])})
	})
	return out, err
}

// GeneralLanguage is a reference frequency table of a general-language corpus,
// keyed by normalized lemma.
type GeneralLanguage struct {
	freq  map[string]float64
	total float64
}

// NewGeneralLanguage builds a table from lemma frequencies.
func NewGeneralLanguage(freq map[string]float64) *GeneralLanguage {
	g := &GeneralLanguage{freq: make(map[string]float64, len(freq))}
	for k, v := range freq {
		g.freq[termino.NormalizeLemma(k)] += v
		g.total += v
	}
	return g
}

// LoadGeneralLanguage reads "lemma<TAB>frequency" lines.
func LoadGeneralLanguage(r io.Reader, name string, logger *log.Logger) (*GeneralLanguage, error) {
	rows, err := ReadTable(r, name, 2, logger)
	if err != nil {
		return nil, err
	}
	freq := make(map[string]float64, len(rows))
	for _, rec := range rows {
		row := rec.Fields
		f, err := strconv.ParseFloat(row[1], 64)
		if err != nil || f < 0 {
			warn(logger, name, rec.Line, "bad frequency %q", row[1])
			continue
		}
		freq[row[0]] += f
	}
	return NewGeneralLanguage(freq), nil
}

// Frequency returns the reference frequency of a lemma.
func (g *GeneralLanguage) Frequency(lemma string) (float64, bool) {
	f, ok := g.freq[termino.NormalizeLemma(lemma)]
	return f, ok
}

// Total is the sum of all frequencies.
func (g *GeneralLanguage) Total() float64 { return g.total }

// Size is the number of distinct lemmas.
func (g *GeneralLanguage) Size() int { return len(g.freq) }

// Synonyms is a symmetric synonymy relation between single-word lemmas.
type Synonyms map[string]map[string]struct{}

// Add records a and b as synonyms.
func (s Synonyms) Add(a, b string) {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return
	}
	for _, p := range [2][2]string{{a, b}, {b, a}} {
		set, ok := s[p[0]]
		if !ok {
			set = make(map[string]struct{})
			s[p[0]] = set
		}
		set[p[1]] = struct{}{}
	}
}

// Are reports whether a and b are declared synonyms.
func (s Synonyms) Are(a, b string) bool {
	_, ok := s[strings.ToLower(a)][strings.ToLower(b)]
	return ok
}

// LoadSynonyms reads "lemma<TAB>synonym[<TAB>synonym...]" lines.
func LoadSynonyms(r io.Reader, name string, logger *log.Logger) (Synonyms, error) {
	rows, err := ReadTable(r, name, 2, logger)
	if err != nil {
		return nil, err
	}
	s := make(Synonyms)
	for _, rec := range rows {
		row := rec.Fields
		for _, syn := range row[1:] {
			if syn != "" {
				s.Add(row[0], syn)
			}
		}
	}
	return s, nil
}

// LoadCompositions reads manual decompositions: "word<TAB>comp1 comp2 ...".
// A word listed with a single component is never split.
func LoadCompositions(r io.Reader, name string, logger *log.Logger) (map[string][]string, error) {
	rows, err := ReadTable(r, name, 2, logger)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(rows))
	for _, rec := range rows {
		row := rec.Fields
		comps := strings.Fields(row[1])
		if len(comps) == 0 {
			warn(logger, name, rec.Line, "no component for %q", row[0])
			continue
		}
		if strings.Join(comps, "") != row[0] && len(comps) > 1 {
			warn(logger, name, rec.Line, "components of %q do not spell the word", row[0])
			continue
		}
		out[row[0]] = comps
	}
	return out, nil
}

// SuffixRule rewrites a word ending: a word ending with From may stand for the
// same stem ending with To (e.g. "ies" -> "y").
type SuffixRule struct {
	From string
	To   string
}

// Apply rewrites w when it ends with the rule suffix.
func (r SuffixRule) Apply(w string) (string, bool) {
	if !strings.HasSuffix(w, r.From) || len(w) == len(r.From) {
		return "", false
	}
	return strings.TrimSuffix(w, r.From) + r.To, true
}

// LoadSuffixRules reads "from<TAB>to" lines; to may be empty.
func LoadSuffixRules(r io.Reader, name string, logger *log.Logger) ([]SuffixRule, error) {
	rows, err := ReadTable(r, name, 2, logger)
	if err != nil {
		return nil, err
	}
	out := make([]SuffixRule, 0, len(rows))
	for _, rec := range rows {
		row := rec.Fields
		if row[0] == "" {
			warn(logger, name, rec.Line, "empty suffix")
			continue
		}
		out = append(out, SuffixRule{From: row[0], To: row[1]})
	}
	return out, nil
}
