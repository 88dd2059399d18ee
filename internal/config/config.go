package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for BoardPulse.
type Config struct {
	Board     BoardConfig     `mapstructure:"board"     yaml:"board"`
	Crawl     CrawlConfig     `mapstructure:"crawl"     yaml:"crawl"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer" yaml:"tokenizer"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// BoardConfig identifies the forum board to crawl.
type BoardConfig struct {
	BaseURL        string `mapstructure:"base_url"         yaml:"base_url"`
	Name           string `mapstructure:"name"             yaml:"name"`
	ListingPath    string `mapstructure:"listing_path"     yaml:"listing_path"` // fmt pattern: board name, page number
	IndexPath      string `mapstructure:"index_path"       yaml:"index_path"`   // fmt pattern: board name
	AgeCookieName  string `mapstructure:"age_cookie_name"  yaml:"age_cookie_name"`
	AgeCookieValue string `mapstructure:"age_cookie_value" yaml:"age_cookie_value"`
}

// CrawlConfig controls the crawl window and throttling.
type CrawlConfig struct {
	StartPage int           `mapstructure:"start_page" yaml:"start_page"` // 0 = discover the latest page
	Pages     int           `mapstructure:"pages"      yaml:"pages"`
	DelayMin  time.Duration `mapstructure:"delay_min"  yaml:"delay_min"`
	DelayMax  time.Duration `mapstructure:"delay_max"  yaml:"delay_max"`
	DelayUnit time.Duration `mapstructure:"delay_unit" yaml:"delay_unit"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"` // 0 = no timeout
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"` // browser fetcher only
}

// SentimentConfig controls sentence scoring.
type SentimentConfig struct {
	LexiconPath  string `mapstructure:"lexicon_path"  yaml:"lexicon_path"` // empty = embedded lexicon
	MissingToken string `mapstructure:"missing_token" yaml:"missing_token"`
}

// TokenizerConfig controls word segmentation.
type TokenizerConfig struct {
	Dict string `mapstructure:"dict" yaml:"dict"`
	HMM  bool   `mapstructure:"hmm"  yaml:"hmm"`
}

// StorageConfig controls dataset output.
type StorageConfig struct {
	Type         string      `mapstructure:"type"          yaml:"type"`
	OutputPath   string      `mapstructure:"output_path"   yaml:"output_path"`
	ScoredPath   string      `mapstructure:"scored_path"   yaml:"scored_path"`
	HeaderLocale string      `mapstructure:"header_locale" yaml:"header_locale"`
	Mongo        MongoConfig `mapstructure:"mongo"         yaml:"mongo"`
}

// MongoConfig controls the optional MongoDB mirror of every written dataset.
type MongoConfig struct {
	Enabled    bool   `mapstructure:"enabled"    yaml:"enabled"`
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			BaseURL:        "https://www.ptt.cc",
			Name:           "Food",
			ListingPath:    "/bbs/%s/index%d.html",
			IndexPath:      "/bbs/%s/index.html",
			AgeCookieName:  "over18",
			AgeCookieValue: "1",
		},
		Crawl: CrawlConfig{
			StartPage: 0,
			Pages:     1,
			DelayMin:  1 * time.Second,
			DelayMax:  6 * time.Second,
			DelayUnit: 1 * time.Second,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    4,
		},
		Sentiment: SentimentConfig{
			MissingToken: "nan",
		},
		Tokenizer: TokenizerConfig{
			Dict: "zh_t",
			HMM:  true,
		},
		Storage: StorageConfig{
			Type:         "csv",
			OutputPath:   "./ptt/ptt_food.csv",
			ScoredPath:   "./ptt/ptt_sentiments.csv",
			HeaderLocale: "en",
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "boardpulse",
				Collection: "posts",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
