package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PushKind tags the variant held by a PushCount.
type PushKind uint8

const (
	PushUnknown PushKind = iota
	PushNumeric
	PushBurst
	PushExcluded
)

// Values persisted for the non-numeric push markers.
const (
	BurstValue    = 99
	ExcludedValue = -10
)

// Board markers shown in place of a number in the push column.
const (
	BurstMarker          = "爆"
	ExcludedMarkerPrefix = "X"
)

// PushCount is the popularity counter of a listing entry.
type PushCount struct {
	Kind PushKind
	N    int
}

// Count returns a numeric push count.
func Count(n int) PushCount { return PushCount{Kind: PushNumeric, N: n} }

// Burst is the counter shown once a post passes the board's display cap.
func Burst() PushCount { return PushCount{Kind: PushBurst} }

// Excluded is the counter of a post with net negative pushes (X1, X2, ...).
func Excluded() PushCount { return PushCount{Kind: PushExcluded} }

// ParsePushCount maps the raw counter text of a listing entry.
func ParsePushCount(raw string) PushCount {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PushCount{}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return Count(n)
	}
	switch {
	case raw == BurstMarker:
		return Burst()
	case strings.HasPrefix(raw, ExcludedMarkerPrefix):
		return Excluded()
	default:
		return PushCount{}
	}
}

// PushCountFromValue reverses Value for data read back from storage.
// A persisted 99 cannot be told apart from a burst marker, so it stays numeric.
func PushCountFromValue(v int) PushCount {
	if v == ExcludedValue {
		return Excluded()
	}
	return Count(v)
}

// Value returns the integer written to tabular output.
func (p PushCount) Value() int {
	switch p.Kind {
	case PushNumeric:
		return p.N
	case PushBurst:
		return BurstValue
	case PushExcluded:
		return ExcludedValue
	default:
		return 0
	}
}

func (p PushCount) String() string {
	switch p.Kind {
	case PushNumeric:
		return strconv.Itoa(p.N)
	case PushBurst:
		return "burst"
	case PushExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// PostReference is one entry of a board listing page. Link is the post path
// relative to the board host, e.g. /bbs/Food/M.1.A.html.
type PostReference struct {
	Date  string    `json:"date"  bson:"date"`
	Title string    `json:"title" bson:"title"`
	Link  string    `json:"link"  bson:"link"`
	Push  PushCount `json:"-"     bson:"-"`
}

// PostRecord is a listing entry together with its extracted body.
type PostRecord struct {
	PostReference
	Body string `json:"body" bson:"body"`
}

// NewPostRecord builds a dataset row, rejecting references without a link.
func NewPostRecord(ref PostReference, body string) (PostRecord, error) {
	if ref.Link == "" {
		return PostRecord{}, fmt.Errorf("%w: %q", ErrMissingLink, ref.Title)
	}
	return PostRecord{PostReference: ref, Body: body}, nil
}

// Dataset is the ordered set of records of one crawl, in discovery order.
type Dataset []PostRecord

// SentimentResult holds the per-post aggregate of sentence scores.
type SentimentResult struct {
	GoodCount int     `json:"good_count" bson:"good_count"`
	BadCount  int     `json:"bad_count"  bson:"bad_count"`
	AvgScore  float64 `json:"avg_score"  bson:"avg_score"`
}

// ScoredRecord is a dataset row after sentiment scoring. Exactly one of
// Sentiment and Err is set for a row that went through the aggregator.
type ScoredRecord struct {
	PostRecord
	Sentiment *SentimentResult
	Err       error
}

// Scored reports whether the row carries a sentiment result.
func (r ScoredRecord) Scored() bool { return r.Sentiment != nil }

// Unscored lifts a raw dataset into rows without sentiment fields.
func Unscored(ds Dataset) []ScoredRecord {
	rows := make([]ScoredRecord, len(ds))
	for i, rec := range ds {
		rows[i] = ScoredRecord{PostRecord: rec}
	}
	return rows
}

// Records strips sentiment fields off scored rows.
func Records(rows []ScoredRecord) Dataset {
	ds := make(Dataset, len(rows))
	for i, row := range rows {
		ds[i] = row.PostRecord
	}
	return ds
}
