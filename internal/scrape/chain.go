// Package scrape fetches web pages and extracts the structural and textual
// features the analyzer works on.
package scrape

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/site-analyzer/internal/config"
)

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	scrapers []Scraper
	robots   *RobotsGuard

	// minText is the text length below which a successful result is held
	// back while later scrapers get a chance to produce more.
	minText int
}

// NewChain creates a Chain. Scrapers are tried in order; the first
// successful result is returned.
func NewChain(scrapers ...Scraper) *Chain {
	return &Chain{scrapers: scrapers}
}

// FromConfig builds the standard chain: static HTTP first, then the headless
// browser when enabled, guarded by robots.txt when configured.
func FromConfig(cfg config.CrawlConfig) *Chain {
	opts := OptionsFromConfig(cfg)
	scrapers := []Scraper{NewLocalScraper(opts)}
	if cfg.Browser.Enabled {
		scrapers = append(scrapers, NewBrowserScraper(cfg))
	}

	c := NewChain(scrapers...)
	if cfg.Browser.Enabled {
		c.WithMinText(cfg.Browser.MinTextSize)
	}
	if cfg.RespectRobots {
		c.WithRobots(NewRobotsGuard(&http.Client{Timeout: opts.withDefaults().Timeout}, opts.UserAgent))
	}
	return c
}

// WithRobots makes the chain refuse URLs disallowed by robots.txt.
func (c *Chain) WithRobots(g *RobotsGuard) *Chain {
	c.robots = g
	return c
}

// WithMinText sets the text length below which later scrapers are tried
// before settling for a thin result.
func (c *Chain) WithMinText(n int) *Chain {
	c.minText = n
	return c
}

// Scrape tries each scraper in order for a single URL.
// Returns the first successful result, or an error if all fail.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if c.robots != nil {
		ok, err := c.robots.Allowed(ctx, targetURL)
		if err != nil {
			return nil, eris.Wrap(err, "scrape: robots check")
		}
		if !ok {
			return nil, eris.Wrapf(ErrDisallowed, "scrape: %s", targetURL)
		}
	}

	var (
		lastErr error
		thin    *Result
	)
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		result, err := s.Scrape(ctx, targetURL)
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if result == nil {
			continue
		}
		if utf8.RuneCountInString(result.Page.TextContent) >= c.minText {
			return result, nil
		}
		zap.L().Debug("scrape: thin result, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Int("text_len", utf8.RuneCountInString(result.Page.TextContent)),
		)
		if thin == nil {
			thin = result
		}
	}
	if thin != nil {
		return thin, nil
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
}

// Fetch is the outcome of scraping one URL in ScrapeAll.
type Fetch struct {
	URL    string
	Result *Result
	Err    error
}

// ScrapeAll fetches multiple URLs in parallel using the chain.
// maxConcurrent controls the concurrency limit. The returned slice has one
// entry per input URL, in input order; failures are reported in Err.
func (c *Chain) ScrapeAll(ctx context.Context, urls []string, maxConcurrent int) []Fetch {
	out := make([]Fetch, len(urls))
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, u := range urls {
		g.Go(func() error {
			result, err := c.Scrape(gCtx, u)
			if err != nil {
				zap.L().Debug("scrape: chain failed for url",
					zap.String("url", u),
					zap.Error(err),
				)
			}
			out[i] = Fetch{URL: u, Result: result, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return out
}
