package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotOK           = errors.New("unexpected HTTP status")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrNoMainContent   = errors.New("main content container not found")
	ErrNoPagination    = errors.New("pagination link not found")
	ErrMissingLink     = errors.New("post reference has no link")
	ErrNoSentences     = errors.New("body segments into zero sentences")
	ErrScoreOutOfRange = errors.New("sentiment score outside [0,1]")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	// URL is the effective request URL, after redirects when a response was received.
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur during parsing.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RowError records why a single dataset row could not be scored.
type RowError struct {
	Row  int
	Link string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s) went wrong: %v", e.Row, e.Link, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
