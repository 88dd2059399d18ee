package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request tags distinguish the two page kinds the crawler fetches.
const (
	TagListing = "listing"
	TagPost    = "post"
)

// Request represents an HTTP request to be fetched by the crawler.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Method is the HTTP method. Always GET for board pages.
	Method string

	// Headers are custom HTTP headers to send with the request.
	Headers http.Header

	// Timeout bounds the whole fetch. Zero means no timeout.
	Timeout time.Duration

	// Tag categorizes this request ("listing" or "post").
	Tag string

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a GET Request for rawURL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:       u,
		Method:    http.MethodGet,
		Headers:   make(http.Header),
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}
