package sentiment

import (
	"strings"

	"github.com/IshaanNene/BoardPulse/internal/wordfreq"
)

// Scorer maps a sentence to a positivity score in [0,1].
type Scorer interface {
	Score(sentence string) (float64, error)
}

type polarity int8

const (
	neutral  polarity = 0
	positive polarity = 1
	negative polarity = -1
)

// LexiconScorer counts lexicon hits among a sentence's tokens and returns
// (pos+1)/(pos+neg+2). A neutral sentence scores exactly 0.5. A negation
// word flips the polarity of the next polar token.
type LexiconScorer struct {
	tokenizer wordfreq.Tokenizer
	words     map[string]polarity
	negation  map[string]struct{}
}

// NewLexiconScorer creates a scorer over lex using tok to split sentences.
func NewLexiconScorer(tok wordfreq.Tokenizer, lex *Lexicon) *LexiconScorer {
	s := &LexiconScorer{
		tokenizer: tok,
		words:     make(map[string]polarity, len(lex.Positive)+len(lex.Negative)),
		negation:  make(map[string]struct{}, len(lex.Negation)),
	}
	for _, w := range lex.Positive {
		s.words[strings.ToLower(w)] = positive
	}
	for _, w := range lex.Negative {
		s.words[strings.ToLower(w)] = negative
	}
	for _, w := range lex.Negation {
		s.negation[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Score implements Scorer.
func (s *LexiconScorer) Score(sentence string) (float64, error) {
	var pos, neg int
	negated := false
	for _, tok := range s.tokenizer.Tokenize(sentence) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if _, ok := s.negation[tok]; ok {
			negated = !negated
			continue
		}
		p := s.words[tok]
		if p == neutral {
			continue
		}
		if negated {
			p = -p
			negated = false
		}
		if p == positive {
			pos++
		} else {
			neg++
		}
	}
	return float64(pos+1) / float64(pos+neg+2), nil
}
