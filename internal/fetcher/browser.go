package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// It serves boards that gate their pages behind client-side scripts.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.Config
	stealth bool
	logger  *slog.Logger
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithStealth opens every page with go-rod/stealth evasions applied.
func WithStealth() BrowserOption {
	return func(bf *BrowserFetcher) { bf.stealth = true }
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser_fetcher"),
	}

	for _, opt := range opts {
		opt(bf)
	}

	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready", "stealth", bf.stealth)
	return bf, nil
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	page, err := bf.newPage()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	defer func(p *rod.Page) { _ = p.Close() }(page)

	page = page.Context(ctx)
	if req.Timeout > 0 {
		page = page.Timeout(req.Timeout)
	}

	cookies := []*proto.NetworkCookieParam{{
		Name:  bf.cfg.Board.AgeCookieName,
		Value: bf.cfg.Board.AgeCookieValue,
		URL:   req.URLString(),
	}}
	if err := page.SetCookies(cookies); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("set cookies: %w", err)}
	}

	if headers := extraHeaders(req.Headers); len(headers) > 0 {
		if _, err := page.SetExtraHeaders(headers); err != nil {
			return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("set headers: %w", err)}
		}
	}

	if ua := bf.cfg.Fetcher.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	// The first document response carries the navigation status code.
	var docResp proto.NetworkResponseReceived
	wait := page.WaitEvent(&docResp)

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	wait()

	if err := page.WaitLoad(); err != nil {
		bf.logger.Warn("page load wait failed, continuing", "url", req.URLString(), "error", err)
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	statusCode := 0
	if docResp.Response != nil {
		statusCode = docResp.Response.Status
	}
	if statusCode != 200 {
		return nil, &types.FetchError{URL: finalURL, StatusCode: statusCode, Err: types.ErrNotOK}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: finalURL, Err: err}
	}

	duration := time.Since(start)
	bf.logger.Debug("browser fetch complete",
		"tag", req.Tag,
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserResponse(req, statusCode, []byte(html), finalURL, duration), nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

func (bf *BrowserFetcher) newPage() (*rod.Page, error) {
	if bf.stealth {
		return stealth.Page(bf.browser)
	}
	return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// extraHeaders flattens h into the name/value pairs rod expects, in a
// stable order.
func extraHeaders(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		if v := h.Get(name); v != "" {
			out = append(out, name, v)
		}
	}
	return out
}
