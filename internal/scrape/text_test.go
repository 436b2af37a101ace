package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	t.Parallel()

	valid := []string{
		"https://example.com",
		"http://example.com/",
		"https://sub.example.co.uk/path?q=1",
		"HTTPS://EXAMPLE.COM",
		"http://localhost:8080/health",
		"http://127.0.0.1:5000",
		"https://example.com.",
	}
	for _, u := range valid {
		assert.True(t, IsValidURL(u), u)
	}

	invalid := []string{
		"",
		"example.com",
		"ftp://example.com",
		"https://",
		"https://-bad.com",
		"https://example",
		"https://example.com/has space",
		"javascript:alert(1)",
	}
	for _, u := range invalid {
		assert.False(t, IsValidURL(u), u)
	}
}

func TestExtractDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", ExtractDomain("https://example.com/about"))
	assert.Equal(t, "localhost:8080", ExtractDomain("http://localhost:8080"))
	assert.Equal(t, "", ExtractDomain("not a url"))
	assert.Equal(t, "", ExtractDomain("http://[::1"))
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Hello \n\n\t world  ", "Hello world"},
		{"Price: $40 (save 10%)!", "Price: 40 save 10!"},
		{"Café — naïve résumé", "Café  naïve résumé"},
		{"snake_case, dash-case; ok?", "snake_case, dash-case; ok?"},
		{"non\u00a0breaking", "non breaking"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "éé...", Truncate("éééé", 2))
}
