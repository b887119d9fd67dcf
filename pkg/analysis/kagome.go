package analysis

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome analyzes Japanese text with the IPA dictionary.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome creates a new tokenizer instance.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Kagome{t: t}, nil
}

// ipaLabel maps IPA part-of-speech features to a term pattern label.
func ipaLabel(features []string) string {
	if len(features) == 0 {
		return "X"
	}
	sub := ""
	if len(features) > 1 {
		sub = features[1]
	}
	switch features[0] {
	case "名詞":
		switch sub {
		case "形容動詞語幹":
			return "A"
		case "非自立", "代名詞", "数":
			return "X"
		}
		return "N"
	case "形容詞":
		return "A"
	case "連体詞":
		return "D"
	case "助詞":
		return "P"
	case "動詞":
		return "V"
	case "接続詞":
		return "C"
	case "記号":
		return "S"
	}
	return "X"
}

// Analyze breaks text into tokens with readings, lemmas and labels. Offsets
// are relative to text.
func (a *Kagome) Analyze(text string) ([]Token, error) {
	tokens := a.t.Tokenize(text)
	var result []Token
	byteCur, runeCur := 0, 0

	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		begin, end, nb, nr := locate(text, token.Surface, byteCur, runeCur)
		byteCur, runeCur = nb, nr

		// Filter out whitespace only tokens.
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}

		// IPA features: POS, 3 sub-POS, conjugation type and form, base form, reading, pronunciation.
		features := token.Features()
		lemma := token.Surface
		if len(features) > 6 && features[6] != "*" {
			lemma = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}

		result = append(result, Token{
			Surface:       token.Surface,
			Lemma:         lemma,
			Reading:       reading,
			Label:         ipaLabel(features),
			PartsOfSpeech: features,
			Begin:         begin,
			End:           end,
		})
	}
	return result, nil
}

// AnalyzeDocument splits the text into sentences and tokenizes each sentence.
func (a *Kagome) AnalyzeDocument(text string) ([]Sentence, error) {
	return analyzeSentences(text, a.Analyze)
}
