package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// ErrDisallowed is returned when robots.txt forbids crawling a URL.
var ErrDisallowed = eris.New("scrape: disallowed by robots.txt")

// RobotsGuard checks URLs against their host's robots.txt. Rules are cached
// per scheme and host. A robots.txt that cannot be fetched allows everything.
type RobotsGuard struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsGuard creates a RobotsGuard that evaluates rules for userAgent.
func NewRobotsGuard(client *http.Client, userAgent string) *RobotsGuard {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &RobotsGuard{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the guard's user agent may crawl rawURL.
func (g *RobotsGuard) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, eris.Wrap(err, "robots: parse url")
	}

	data, err := g.rules(ctx, u)
	if err != nil {
		zap.L().Debug("robots: fetch failed, allowing",
			zap.String("host", u.Host),
			zap.Error(err),
		)
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, g.userAgent), nil
}

func (g *RobotsGuard) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := u.Scheme + "://" + u.Host

	g.mu.Lock()
	data, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return data, nil
	}

	robotsURL := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "robots: create request")
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "robots: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, eris.Wrap(err, "robots: read body")
	}

	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, eris.Wrap(err, "robots: parse")
	}

	g.mu.Lock()
	g.cache[key] = data
	g.mu.Unlock()
	return data, nil
}
