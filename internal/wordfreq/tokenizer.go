package wordfreq

import (
	"fmt"

	"github.com/go-ego/gse"
)

// Tokenizer splits text into word tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// GseTokenizer segments Chinese text with a gse dictionary.
type GseTokenizer struct {
	seg gse.Segmenter
	hmm bool
}

// NewGseTokenizer loads the named embedded gse dictionary ("zh_t" for
// traditional Chinese, "zh_s" for simplified). hmm enables the HMM model
// for words missing from the dictionary.
func NewGseTokenizer(dict string, hmm bool) (*GseTokenizer, error) {
	t := &GseTokenizer{hmm: hmm}
	t.seg.SkipLog = true
	if err := t.seg.LoadDictEmbed(dict); err != nil {
		return nil, fmt.Errorf("load gse dictionary %q: %w", dict, err)
	}
	return t, nil
}

// Tokenize cuts text in accurate mode. Whitespace and punctuation tokens
// are returned as they are.
func (t *GseTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return t.seg.Cut(text, t.hmm)
}
