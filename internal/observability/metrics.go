package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for a crawl and analysis run.
type Metrics struct {
	// Fetch metrics
	ListingsFetched atomic.Int64
	ListingsFailed  atomic.Int64
	PostsFetched    atomic.Int64
	PostsFailed     atomic.Int64
	BytesDownloaded atomic.Int64

	// Dataset metrics
	PostsDeleted  atomic.Int64
	RecordsBuilt  atomic.Int64
	EmptyBodies   atomic.Int64
	RecordsStored atomic.Int64

	// Analysis metrics
	RowsScored     atomic.Int64
	RowsFailed     atomic.Int64
	TokensCounted  atomic.Int64
	SentencesTotal atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"boardpulse_listings_fetched_total", "Listing pages fetched", m.ListingsFetched.Load()},
		{"boardpulse_listings_failed_total", "Listing pages that failed to fetch", m.ListingsFailed.Load()},
		{"boardpulse_posts_fetched_total", "Post pages fetched", m.PostsFetched.Load()},
		{"boardpulse_posts_failed_total", "Post pages that failed to fetch or parse", m.PostsFailed.Load()},
		{"boardpulse_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
		{"boardpulse_posts_deleted_total", "Listing entries skipped as deleted", m.PostsDeleted.Load()},
		{"boardpulse_records_built_total", "Dataset rows built", m.RecordsBuilt.Load()},
		{"boardpulse_empty_bodies_total", "Dataset rows with an empty body", m.EmptyBodies.Load()},
		{"boardpulse_records_stored_total", "Rows written to storage", m.RecordsStored.Load()},
		{"boardpulse_rows_scored_total", "Rows scored for sentiment", m.RowsScored.Load()},
		{"boardpulse_rows_failed_total", "Rows whose scoring failed", m.RowsFailed.Load()},
		{"boardpulse_tokens_counted_total", "Tokens counted for frequency", m.TokensCounted.Load()},
		{"boardpulse_sentences_total", "Sentences scored", m.SentencesTotal.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"listings_fetched": m.ListingsFetched.Load(),
		"listings_failed":  m.ListingsFailed.Load(),
		"posts_fetched":    m.PostsFetched.Load(),
		"posts_failed":     m.PostsFailed.Load(),
		"bytes_downloaded": m.BytesDownloaded.Load(),
		"posts_deleted":    m.PostsDeleted.Load(),
		"records_built":    m.RecordsBuilt.Load(),
		"empty_bodies":     m.EmptyBodies.Load(),
		"records_stored":   m.RecordsStored.Load(),
		"rows_scored":      m.RowsScored.Load(),
		"rows_failed":      m.RowsFailed.Load(),
		"tokens_counted":   m.TokensCounted.Load(),
		"sentences_total":  m.SentencesTotal.Load(),
	}
}

// LogSnapshot writes the current counters as one structured log line.
func (m *Metrics) LogSnapshot(msg string) {
	snap := m.Snapshot()
	args := make([]any, 0, len(snap)*2)
	for _, k := range []string{
		"listings_fetched", "listings_failed", "posts_fetched", "posts_failed",
		"posts_deleted", "records_built", "empty_bodies", "records_stored",
		"rows_scored", "rows_failed", "sentences_total", "tokens_counted", "bytes_downloaded",
	} {
		args = append(args, k, snap[k])
	}
	m.logger.Info(msg, args...)
}
