package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// LocalScraper fetches static HTML via net/http, detects blocks and extracts
// the page with goquery. Pages that are blocked or need JavaScript fail so
// the chain can fall through to the browser.
type LocalScraper struct {
	client *http.Client
	opts   Options
}

// NewLocalScraper creates a LocalScraper.
func NewLocalScraper(opts Options) *LocalScraper {
	opts = opts.withDefaults()
	return &LocalScraper{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, detects blocks and extracts the page.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	if len(body) == 0 {
		return nil, eris.New("local_http: empty page")
	}

	page, err := Extract(targetURL, decodeBody(body, resp.Header.Get("Content-Type")), l.opts)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: extract")
	}
	page.Source = l.Name()

	return &Result{Page: page, Source: l.Name()}, nil
}
