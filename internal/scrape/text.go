package scrape

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var validURLRe = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// IsValidURL reports whether raw is an absolute http(s) URL with a domain,
// localhost or IPv4 host.
func IsValidURL(raw string) bool {
	return validURLRe.MatchString(raw)
}

// ExtractDomain returns the host (with port, if any) of raw, or "" when raw
// does not parse.
func ExtractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

var whitespaceRe = regexp.MustCompile(`[\s\p{Zs}]+`)

// CleanText collapses whitespace runs to single spaces and drops every
// character that is not a letter, digit, underscore, space or basic
// punctuation (.,!?;:-).
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', unicode.IsSpace(r):
			return r
		case strings.ContainsRune(".,!?;:-", r):
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}

// Truncate cuts s to max runes and appends "..." when it was longer.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
