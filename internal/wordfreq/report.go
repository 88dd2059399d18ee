package wordfreq

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// WriteMarkdown renders a ranking as a Markdown table headed by source.
func WriteMarkdown(w io.Writer, source string, entries []Entry) error {
	md := markdown.NewMarkdown(w)
	md.H1("Word Frequency")
	md.PlainText("")
	md.PlainText("Source: `" + source + "`")
	md.PlainText("")

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(i + 1), e.Token, strconv.Itoa(e.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Token", "Count"},
		Rows:   rows,
	})
	return md.Build()
}
