// Package wordfreq counts word tokens across the bodies of a dataset.
package wordfreq

import (
	"errors"
	"log/slog"

	"github.com/IshaanNene/BoardPulse/internal/observability"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

// ErrNoContent is reported when there is nothing to count.
var ErrNoContent = errors.New("no content available")

// Analyzer builds a frequency ranking over a dataset.
type Analyzer struct {
	tokenizer Tokenizer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAnalyzer creates an Analyzer. metrics may be nil.
func NewAnalyzer(tok Tokenizer, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	return &Analyzer{
		tokenizer: tok,
		logger:    logger.With("component", "wordfreq"),
		metrics:   metrics,
	}
}

// Analyze tokenizes every body into a fresh Table and returns its ranking.
// An empty dataset, or one whose bodies hold no tokens, returns ErrNoContent.
func (a *Analyzer) Analyze(ds types.Dataset) ([]Entry, error) {
	if len(ds) == 0 {
		return nil, ErrNoContent
	}

	table := NewTable()
	for _, rec := range ds {
		n := table.Add(a.tokenizer.Tokenize(rec.Body)...)
		a.metrics.TokensCounted.Add(int64(n))
	}
	if table.Len() == 0 {
		return nil, ErrNoContent
	}

	a.logger.Debug("frequency table built", "rows", len(ds), "distinct_tokens", table.Len())
	return table.Ranking(), nil
}

// Top returns at most n entries of a ranking. n <= 0 returns all of them.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
