package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Board.BaseURL); err != nil {
		return fmt.Errorf("board.base_url: %w", err)
	}
	if cfg.Board.Name == "" {
		return fmt.Errorf("board.name must not be empty")
	}
	if strings.Count(cfg.Board.ListingPath, "%") != 2 {
		return fmt.Errorf("board.listing_path must hold a board and a page verb, got %q", cfg.Board.ListingPath)
	}
	if strings.Count(cfg.Board.IndexPath, "%") != 1 {
		return fmt.Errorf("board.index_path must hold a board verb, got %q", cfg.Board.IndexPath)
	}
	if cfg.Board.AgeCookieName == "" || cfg.Board.AgeCookieValue == "" {
		return fmt.Errorf("board.age_cookie_name and board.age_cookie_value must be set")
	}

	if cfg.Crawl.StartPage < 0 {
		return fmt.Errorf("crawl.start_page must be >= 0, got %d", cfg.Crawl.StartPage)
	}
	if cfg.Crawl.Pages < 1 {
		return fmt.Errorf("crawl.pages must be >= 1, got %d", cfg.Crawl.Pages)
	}
	if cfg.Crawl.StartPage > 0 && cfg.Crawl.Pages > cfg.Crawl.StartPage {
		return fmt.Errorf("crawl.pages (%d) reaches past page 1 from start page %d", cfg.Crawl.Pages, cfg.Crawl.StartPage)
	}
	if cfg.Crawl.DelayMin < 0 || cfg.Crawl.DelayMax < cfg.Crawl.DelayMin {
		return fmt.Errorf("crawl delay range [%s, %s] is invalid", cfg.Crawl.DelayMin, cfg.Crawl.DelayMax)
	}
	if cfg.Crawl.DelayUnit <= 0 {
		return fmt.Errorf("crawl.delay_unit must be > 0")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout < 0 {
		return fmt.Errorf("fetcher.request_timeout must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Tokenizer.Dict == "" {
		return fmt.Errorf("tokenizer.dict must not be empty")
	}

	validStorageTypes := map[string]bool{
		"csv": true, "jsonl": true, "sqlite": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: csv, jsonl, sqlite)", cfg.Storage.Type)
	}
	if cfg.Storage.HeaderLocale != "en" && cfg.Storage.HeaderLocale != "zh" {
		return fmt.Errorf("storage.header_locale must be 'en' or 'zh', got %q", cfg.Storage.HeaderLocale)
	}
	if cfg.Storage.Mongo.Enabled {
		if cfg.Storage.Mongo.URI == "" || cfg.Storage.Mongo.Database == "" || cfg.Storage.Mongo.Collection == "" {
			return fmt.Errorf("storage.mongo requires uri, database and collection when enabled")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
