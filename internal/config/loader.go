package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the per-user config directory.
const AppName = "boardpulse"

// ConfigDir returns the XDG config directory searched for boardpulse.yaml,
// e.g. ~/.config/boardpulse on Linux.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied on top by the caller.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("BOARDPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("boardpulse")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(ConfigDir())
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".boardpulse"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env vars bind to every key.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("board.base_url", cfg.Board.BaseURL)
	v.SetDefault("board.name", cfg.Board.Name)
	v.SetDefault("board.listing_path", cfg.Board.ListingPath)
	v.SetDefault("board.index_path", cfg.Board.IndexPath)
	v.SetDefault("board.age_cookie_name", cfg.Board.AgeCookieName)
	v.SetDefault("board.age_cookie_value", cfg.Board.AgeCookieValue)

	v.SetDefault("crawl.start_page", cfg.Crawl.StartPage)
	v.SetDefault("crawl.pages", cfg.Crawl.Pages)
	v.SetDefault("crawl.delay_min", cfg.Crawl.DelayMin)
	v.SetDefault("crawl.delay_max", cfg.Crawl.DelayMax)
	v.SetDefault("crawl.delay_unit", cfg.Crawl.DelayUnit)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)

	v.SetDefault("sentiment.lexicon_path", cfg.Sentiment.LexiconPath)
	v.SetDefault("sentiment.missing_token", cfg.Sentiment.MissingToken)

	v.SetDefault("tokenizer.dict", cfg.Tokenizer.Dict)
	v.SetDefault("tokenizer.hmm", cfg.Tokenizer.HMM)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.scored_path", cfg.Storage.ScoredPath)
	v.SetDefault("storage.header_locale", cfg.Storage.HeaderLocale)
	v.SetDefault("storage.mongo.enabled", cfg.Storage.Mongo.Enabled)
	v.SetDefault("storage.mongo.uri", cfg.Storage.Mongo.URI)
	v.SetDefault("storage.mongo.database", cfg.Storage.Mongo.Database)
	v.SetDefault("storage.mongo.collection", cfg.Storage.Mongo.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
