package parser

import (
	"strings"
	"unicode"
)

// cjkPunctuation lists the full-width marks kept in post bodies.
const cjkPunctuation = "。；，：“”（）、？「」『』【】"

// urlSymbols are the ASCII symbols kept so links and times stay readable.
const urlSymbols = ":/-.()"

// signatureSeparator starts the signature block of a post.
const signatureSeparator = "--"

// Sanitize reduces text to CJK ideographs, CJK punctuation, word characters,
// whitespace and the symbols :/-.(), collapses whitespace runs to a single
// space, drops "--" separators and lowercases ASCII letters.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	kept := strings.Map(func(r rune) rune {
		if allowedRune(r) {
			return r
		}
		return -1
	}, text)

	out := collapseSpace(kept)
	if strings.Contains(out, signatureSeparator) {
		out = collapseSpace(strings.ReplaceAll(out, signatureSeparator, ""))
	}

	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, out)
}

func allowedRune(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FA5:
		return true
	case unicode.IsSpace(r):
		return true
	case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
		return true
	}
	return strings.ContainsRune(urlSymbols, r) || strings.ContainsRune(cjkPunctuation, r)
}

// collapseSpace replaces every whitespace run with one ASCII space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
