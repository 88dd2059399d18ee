// Package crawler walks a board's listing pages from newest to oldest and
// assembles the dataset of posts found on them.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/fetcher"
	"github.com/IshaanNene/BoardPulse/internal/observability"
	"github.com/IshaanNene/BoardPulse/internal/parser"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Crawler drives a sequential crawl over one board.
type Crawler struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics
	rng     *rand.Rand
	sleep   Sleeper
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithSleeper replaces the throttle sleep, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Crawler) { c.sleep = s }
}

// WithRand sets the random source used for request delays.
func WithRand(rng *rand.Rand) Option {
	return func(c *Crawler) { c.rng = rng }
}

// WithMetrics reports crawl counters to m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Crawler) { c.metrics = m }
}

// New creates a Crawler that fetches pages through f.
func New(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:     cfg,
		fetcher: f,
		logger:  logger.With("component", "crawler"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics(logger)
	}
	return c
}

// ListingURL returns the absolute URL of listing page n.
func (c *Crawler) ListingURL(n int) string {
	return c.baseURL() + fmt.Sprintf(c.cfg.Board.ListingPath, c.cfg.Board.Name, n)
}

// IndexURL returns the board's unnumbered index page, which always shows the newest entries.
func (c *Crawler) IndexURL() string {
	return c.baseURL() + fmt.Sprintf(c.cfg.Board.IndexPath, c.cfg.Board.Name)
}

// PostURL resolves a post link taken from a listing page.
func (c *Crawler) PostURL(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return c.baseURL() + link
}

func (c *Crawler) baseURL() string {
	return strings.TrimRight(c.cfg.Board.BaseURL, "/")
}

// LatestPage discovers the number of the newest listing page.
func (c *Crawler) LatestPage(ctx context.Context) (int, error) {
	resp, err := c.get(ctx, c.IndexURL(), types.TagListing)
	if err != nil {
		return 0, err
	}
	doc, err := resp.Document()
	if err != nil {
		return 0, &types.ParseError{URL: resp.FinalURL, Err: err}
	}
	n, err := parser.LatestPage(doc)
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) {
			pe.URL = resp.FinalURL
		}
		return 0, err
	}
	return n, nil
}

// FetchListing returns the post references on listing page n, top to
// bottom. A failed fetch is logged and yields no references.
func (c *Crawler) FetchListing(ctx context.Context, n int) []types.PostReference {
	pageURL := c.ListingURL(n)
	resp, err := c.get(ctx, pageURL, types.TagListing)
	if err != nil {
		c.metrics.ListingsFailed.Add(1)
		c.logFetchFailure("listing", pageURL, err)
		return nil
	}
	c.metrics.ListingsFetched.Add(1)
	c.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	doc, err := resp.Document()
	if err != nil {
		c.logger.Warn("listing parse failed", "url", resp.FinalURL, "error", err)
		return nil
	}
	result, err := parser.ParseListing(doc)
	if err != nil {
		c.logger.Warn("listing parse failed", "url", resp.FinalURL, "error", err)
		return nil
	}
	if result.Deleted > 0 {
		c.metrics.PostsDeleted.Add(int64(result.Deleted))
		c.logger.Debug("skipped deleted entries", "page", n, "count", result.Deleted)
	}
	return result.References
}

// ExtractPost fetches a post and returns its sanitized body. Any failure
// yields an empty body.
func (c *Crawler) ExtractPost(ctx context.Context, link string) string {
	postURL := c.PostURL(link)
	resp, err := c.get(ctx, postURL, types.TagPost)
	if err != nil {
		c.metrics.PostsFailed.Add(1)
		c.logFetchFailure("post", postURL, err)
		return ""
	}
	c.metrics.PostsFetched.Add(1)
	c.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	doc, err := resp.Document()
	if err != nil {
		c.logger.Debug("post could not be parsed", "url", resp.FinalURL, "error", err)
		return ""
	}
	body, err := parser.ExtractBody(doc, link)
	if err != nil {
		c.logger.Debug("post has no extractable content", "url", resp.FinalURL, "error", err)
		return ""
	}
	return body
}

// Crawl visits listing pages start, start-1, ..., start-depth+1 and returns
// every post found, newest page first. A start of zero or less discovers
// the newest page first. Only cancellation of ctx is returned as an error;
// the records gathered so far are returned with it.
func (c *Crawler) Crawl(ctx context.Context, start, depth int) (types.Dataset, error) {
	if start <= 0 {
		latest, err := c.LatestPage(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("discover latest page: %w", err)
		}
		c.logger.Info("discovered latest page", "page", latest)
		start = latest
	}

	c.logger.Info("crawl starting",
		"board", c.cfg.Board.Name,
		"start", start,
		"pages", depth,
	)

	var ds types.Dataset
	for i := 0; i < depth; i++ {
		if err := ctx.Err(); err != nil {
			return ds, err
		}
		page := start - i
		if page < 1 {
			c.logger.Warn("reached the first listing page, stopping", "requested_pages", depth, "visited", i)
			break
		}

		refs := c.FetchListing(ctx, page)
		c.logger.Debug("listing fetched", "page", page, "entries", len(refs))

		for _, ref := range refs {
			body := c.ExtractPost(ctx, ref.Link)
			if body == "" {
				c.metrics.EmptyBodies.Add(1)
			}

			rec, err := types.NewPostRecord(ref, body)
			if err != nil {
				c.logger.Warn("dropping listing entry", "title", ref.Title, "error", err)
			} else {
				ds = append(ds, rec)
				c.metrics.RecordsBuilt.Add(1)
				c.logger.Info("post processed", "title", ref.Title, "link", ref.Link)
			}

			delay := fetcher.RandomDelay(c.rng, c.cfg.Crawl.DelayMin, c.cfg.Crawl.DelayMax, c.cfg.Crawl.DelayUnit)
			if err := c.sleep(ctx, delay); err != nil {
				return ds, err
			}
		}
	}

	c.logger.Info("crawl finished", "records", len(ds))
	return ds, nil
}

func (c *Crawler) get(ctx context.Context, rawURL, tag string) (*types.Response, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	req.Tag = tag
	req.Timeout = c.cfg.Fetcher.RequestTimeout
	if tag == types.TagPost {
		req.Headers.Set("Referer", c.IndexURL())
	}
	return c.fetcher.Fetch(ctx, req)
}

func (c *Crawler) logFetchFailure(kind, requested string, err error) {
	effective := requested
	status := 0
	var fe *types.FetchError
	if errors.As(err, &fe) {
		if fe.URL != "" {
			effective = fe.URL
		}
		status = fe.StatusCode
	}
	c.logger.Warn(kind+" fetch failed", "url", effective, "status", status, "error", err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
