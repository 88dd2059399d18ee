package sentiment

import (
	"strings"
)

// Segmenter splits a body into sentences.
type Segmenter interface {
	Segment(text string) ([]string, error)
}

// sentenceDelimiters end a sentence inside a line.
const sentenceDelimiters = "，。？！；"

// PunctSegmenter splits on line breaks, then on Chinese sentence
// punctuation. Pieces are trimmed and empty pieces dropped.
type PunctSegmenter struct{}

// Segment implements Segmenter.
func (PunctSegmenter) Segment(text string) ([]string, error) {
	var out []string
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	for _, line := range lines {
		pieces := strings.FieldsFunc(line, func(r rune) bool {
			return strings.ContainsRune(sentenceDelimiters, r)
		})
		for _, p := range pieces {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out, nil
}
