package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ChildPolicyIsolate = "isolate"
	ChildPolicyAbort   = "abort"

	IngestModeInsert = "insert"
	IngestModeUpsert = "upsert"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	PublishersFile string `mapstructure:"publishers_file"`

	SitemapURL           string        `mapstructure:"sitemap_url"`
	ChildSitemapPolicy   string        `mapstructure:"child_sitemap_policy"`
	CrawlConcurrency     int           `mapstructure:"crawl_concurrency"`
	CrawlIntervalSeconds int64         `mapstructure:"crawl_interval"`
	CrawlInterval        time.Duration `mapstructure:"-"`
	HTTPTimeoutSeconds   int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout          time.Duration `mapstructure:"-"`
	UserAgent            string        `mapstructure:"user_agent"`
	MaxPageBytes         int           `mapstructure:"max_page_bytes"`

	StorageType   string `mapstructure:"storage_type"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	BBoltPath     string `mapstructure:"bbolt_path"`
	IngestMode    string `mapstructure:"ingest_mode"`

	APIAddr string `mapstructure:"api_addr"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "wire-scout")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("publishers_file", "")
	v.SetDefault("sitemap_url", "https://www.prnewswire.com/sitemap-news.xml")
	v.SetDefault("child_sitemap_policy", ChildPolicyIsolate)
	v.SetDefault("crawl_concurrency", 8)
	v.SetDefault("crawl_interval", 900) // seconds
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("user_agent", "wire-scout/1.0 (+https://github.com/samvad-hq/wire-scout)")
	v.SetDefault("max_page_bytes", 4<<20)
	v.SetDefault("storage_type", "mongo")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "wire-scout")
	v.SetDefault("bbolt_path", "./data/articles.db")
	v.SetDefault("ingest_mode", IngestModeInsert)
	v.SetDefault("api_addr", ":8000")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the loaded values and derives durations.
func (c *Config) normalize() error {
	c.SitemapURL = strings.TrimSpace(c.SitemapURL)
	c.ChildSitemapPolicy = strings.ToLower(strings.TrimSpace(c.ChildSitemapPolicy))
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	c.IngestMode = strings.ToLower(strings.TrimSpace(c.IngestMode))

	if c.SitemapURL == "" {
		return fmt.Errorf("sitemap_url is required")
	}
	switch c.ChildSitemapPolicy {
	case ChildPolicyIsolate, ChildPolicyAbort:
	default:
		return fmt.Errorf("invalid child_sitemap_policy %q (want %s or %s)", c.ChildSitemapPolicy, ChildPolicyIsolate, ChildPolicyAbort)
	}
	switch c.IngestMode {
	case IngestModeInsert, IngestModeUpsert:
	default:
		return fmt.Errorf("invalid ingest_mode %q (want %s or %s)", c.IngestMode, IngestModeInsert, IngestModeUpsert)
	}
	if c.CrawlConcurrency <= 0 {
		return fmt.Errorf("invalid crawl_concurrency (must be at least 1)")
	}
	if c.CrawlIntervalSeconds <= 0 {
		return fmt.Errorf("invalid crawl_interval (must be positive seconds)")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if c.MaxPageBytes <= 0 {
		return fmt.Errorf("invalid max_page_bytes (must be positive)")
	}

	c.CrawlInterval = time.Duration(c.CrawlIntervalSeconds) * time.Second
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second
	return nil
}
