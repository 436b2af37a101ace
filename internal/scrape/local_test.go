package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalScraper_Page(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s := NewLocalScraper(Options{UserAgent: "TestBot/1.0"})
	result, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "TestBot/1.0", gotUA)
	assert.Equal(t, "local_http", result.Source)
	assert.Equal(t, "local_http", result.Page.Source)
	assert.Equal(t, srv.URL, result.Page.URL)
	assert.Equal(t, "Acme Corp", result.Page.Title)
	assert.Contains(t, result.Page.TextContent, "Contact sales today!")
	assert.False(t, result.Page.Dynamic)
}

func TestLocalScraper_DefaultUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(Options{}).Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestLocalScraper_Cloudflare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cf-Ray", "abc123")
		w.WriteHeader(403)
		_, _ = w.Write([]byte(`<html><body>Access denied</body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(Options{}).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestLocalScraper_JSShell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><noscript>You need to enable JavaScript to run this app.</noscript><div id="root"></div></body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(Options{}).Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "js_shell")
}

func TestLocalScraper_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	_, err := NewLocalScraper(Options{}).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLocalScraper_HTTP404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`<html><body>Not found page with lots of content here to exceed threshold</body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(Options{}).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestLocalScraper_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("a", 100) + "</p><p>tail marker</p></body></html>"))
	}))
	defer srv.Close()

	result, err := NewLocalScraper(Options{MaxBodyBytes: 64}).Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotContains(t, result.Page.TextContent, "tail marker")
}

func TestLocalScraper_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewLocalScraper(Options{}).Scrape(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch")
}

func TestLocalScraper_Name(t *testing.T) {
	s := NewLocalScraper(Options{})
	assert.Equal(t, "local_http", s.Name())
	assert.True(t, s.Supports("https://example.com"))
	assert.True(t, s.Supports("http://localhost"))
}

func TestBrowserScraper_Metadata(t *testing.T) {
	s := NewBrowserScraper(testCrawlConfig())
	assert.Equal(t, "browser", s.Name())
	assert.True(t, s.Supports("https://example.com"))
	assert.False(t, s.Supports("file:///etc/passwd"))
	assert.Equal(t, "ws://127.0.0.1:9222", s.ControlURL)
}
