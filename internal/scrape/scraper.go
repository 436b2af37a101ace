package scrape

import (
	"context"
	"time"

	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/model"
)

// Result holds a scraped page with its source.
type Result struct {
	Page   model.PageRecord
	Source string // e.g. "local_http", "browser"
}

// Scraper fetches a single URL and returns its extracted page.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

// Options configures fetching and extraction.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	MaxLinks     int
	MaxImages    int
}

// OptionsFromConfig builds Options from the crawl configuration.
func OptionsFromConfig(cfg config.CrawlConfig) Options {
	return Options{
		UserAgent:    cfg.UserAgent,
		Timeout:      time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxBodyBytes: cfg.MaxBodyBytes,
		MaxLinks:     cfg.MaxLinks,
		MaxImages:    cfg.MaxImages,
	}
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 5 << 20
	}
	if o.MaxLinks <= 0 {
		o.MaxLinks = 20
	}
	if o.MaxImages <= 0 {
		o.MaxImages = 10
	}
	return o
}

// DefaultUserAgent identifies the crawler when none is configured.
const DefaultUserAgent = "AI Website Analyzer Bot/1.0"
