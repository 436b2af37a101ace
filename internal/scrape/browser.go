package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/config"
)

// BrowserScraper renders pages in a headless Chrome via rod before running
// the same extraction as LocalScraper. With an empty ControlURL rod
// launches a local browser.
type BrowserScraper struct {
	ControlURL string
	Wait       time.Duration
	opts       Options
}

// NewBrowserScraper creates a BrowserScraper from the crawl configuration.
func NewBrowserScraper(cfg config.CrawlConfig) *BrowserScraper {
	return &BrowserScraper{
		ControlURL: cfg.Browser.ControlURL,
		Wait:       time.Duration(cfg.Browser.WaitSecs) * time.Second,
		opts:       OptionsFromConfig(cfg).withDefaults(),
	}
}

func (b *BrowserScraper) Name() string { return "browser" }

// Supports reports true for http(s) URLs.
func (b *BrowserScraper) Supports(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Scrape loads targetURL, waits for the page to settle and extracts it.
func (b *BrowserScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	browser := rod.New().Context(ctx).Timeout(b.opts.Timeout)
	if b.ControlURL != "" {
		browser = browser.ControlURL(b.ControlURL)
	}
	if err := browser.Connect(); err != nil {
		return nil, eris.Wrap(err, "browser: connect")
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, eris.Wrap(err, "browser: open page")
	}
	defer func() { _ = page.Close() }()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent}); err != nil {
		return nil, eris.Wrap(err, "browser: set user agent")
	}
	if err := page.Navigate(targetURL); err != nil {
		return nil, eris.Wrap(err, "browser: navigate")
	}
	if err := page.WaitLoad(); err != nil {
		return nil, eris.Wrap(err, "browser: wait load")
	}
	if b.Wait > 0 {
		// Idle timeouts are expected on pages that keep polling.
		_ = page.WaitIdle(b.Wait)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, eris.Wrap(err, "browser: read html")
	}

	rec, err := Extract(targetURL, strings.NewReader(html), b.opts)
	if err != nil {
		return nil, eris.Wrap(err, "browser: extract")
	}
	rec.Dynamic = true
	rec.Source = b.Name()

	return &Result{Page: rec, Source: b.Name()}, nil
}
