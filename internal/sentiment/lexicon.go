package sentiment

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon lists the polar and negating words used by LexiconScorer.
type Lexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Negation []string `yaml:"negation"`
}

// DefaultLexicon returns the built-in food board lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return parseLexicon(defaultLexicon)
}

// LoadLexicon reads a YAML lexicon from path. An empty path returns the
// default lexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	lex, err := parseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

func parseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lex.Positive) == 0 && len(lex.Negative) == 0 {
		return nil, fmt.Errorf("lexicon has no polar words")
	}
	return &lex, nil
}
