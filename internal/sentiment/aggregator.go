// Package sentiment scores the sentences of each post body and rolls them
// up into per-post good/bad counts and a mean score.
package sentiment

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/IshaanNene/BoardPulse/internal/observability"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

// GoodThreshold separates good sentences from bad ones. A score equal to
// the threshold counts as bad.
const GoodThreshold = 0.5

// DefaultMissingToken is the sentence text left behind by a missing value.
const DefaultMissingToken = "nan"

// Aggregator turns a dataset into scored rows.
type Aggregator struct {
	segmenter Segmenter
	scorer    Scorer
	missing   string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithMissingToken sets the sentence text that is counted but never scored.
func WithMissingToken(tok string) AggregatorOption {
	return func(a *Aggregator) { a.missing = tok }
}

// WithMetrics reports scoring counters to m.
func WithMetrics(m *observability.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

// NewAggregator creates an Aggregator.
func NewAggregator(seg Segmenter, sc Scorer, logger *slog.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		segmenter: seg,
		scorer:    sc,
		missing:   DefaultMissingToken,
		logger:    logger.With("component", "sentiment"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = observability.NewMetrics(logger)
	}
	return a
}

// ScoreDataset scores every row of ds, in order. A row that cannot be
// scored keeps its error in ScoredRecord.Err and the remaining rows are
// still processed.
func (a *Aggregator) ScoreDataset(ds types.Dataset) []types.ScoredRecord {
	rows := make([]types.ScoredRecord, len(ds))
	failed := 0
	for i, rec := range ds {
		rows[i].PostRecord = rec
		res, err := a.scoreRow(rec.Body)
		if err != nil {
			rows[i].Err = &types.RowError{Row: i, Link: rec.Link, Err: err}
			a.metrics.RowsFailed.Add(1)
			failed++
			a.logger.Warn("row scoring failed", "row", i, "link", rec.Link, "error", err)
			continue
		}
		rows[i].Sentiment = res
		a.metrics.RowsScored.Add(1)
	}

	a.logger.Info("sentiment scoring finished",
		"rows", len(rows),
		"failed", failed,
	)
	return rows
}

func (a *Aggregator) scoreRow(body string) (res *types.SentimentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("scorer panic: %v", r)
		}
	}()

	sentences, err := a.segmenter.Segment(body)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	if len(sentences) == 0 {
		return nil, types.ErrNoSentences
	}
	a.metrics.SentencesTotal.Add(int64(len(sentences)))

	out := &types.SentimentResult{}
	var sum float64
	for _, s := range sentences {
		if s == a.missing {
			continue
		}
		score, err := a.scorer.Score(s)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", s, err)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 1 {
			return nil, fmt.Errorf("%w: %v", types.ErrScoreOutOfRange, score)
		}
		if score > GoodThreshold {
			out.GoodCount++
		} else {
			out.BadCount++
		}
		sum += score
	}
	out.AvgScore = sum / float64(len(sentences))
	return out, nil
}
