package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the page at the request URL. Any status other than
	// 200 is reported as a *types.FetchError.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New creates the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "http", "":
		return NewHTTPFetcher(cfg, logger)
	case "browser":
		var opts []BrowserOption
		if cfg.Fetcher.Stealth {
			opts = append(opts, WithStealth())
		}
		return NewBrowserFetcher(cfg, logger, opts...)
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", cfg.Fetcher.Type)
	}
}

// AgeCookie returns the age-verification cookie sent with every request.
func AgeCookie(board *config.BoardConfig) *http.Cookie {
	return &http.Cookie{Name: board.AgeCookieName, Value: board.AgeCookieValue}
}
