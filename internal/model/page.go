package model

import "time"

// HeadingLevels lists the heading tags captured for every page, in order.
var HeadingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// Link is an anchor found on a crawled page.
type Link struct {
	Text string `json:"text" yaml:"text"`
	Href string `json:"href" yaml:"href"`
}

// Image is an img element found on a crawled page.
type Image struct {
	Alt string `json:"alt" yaml:"alt"`
	Src string `json:"src" yaml:"src"`
}

// Form is a form element found on a crawled page.
type Form struct {
	Action string `json:"action" yaml:"action"`
	Method string `json:"method" yaml:"method"`
}

// PageRecord holds everything extracted from a single crawled page. The
// analysis core treats it as read-only.
type PageRecord struct {
	URL             string              `json:"url" yaml:"url"`
	Title           string              `json:"title" yaml:"title"`
	MetaDescription string              `json:"meta_description" yaml:"meta_description"`
	TextContent     string              `json:"text_content" yaml:"text_content"`
	Headings        map[string][]string `json:"headings" yaml:"headings"`
	Links           []Link              `json:"links" yaml:"links"`
	Images          []Image             `json:"images" yaml:"images"`
	Forms           []Form              `json:"forms" yaml:"forms"`
	Dynamic         bool                `json:"dynamic" yaml:"dynamic"`
	Source          string              `json:"source,omitempty" yaml:"source,omitempty"`
	FetchedAt       time.Time           `json:"fetched_at" yaml:"fetched_at"`
}

// NewPageRecord returns a PageRecord for url with every collection field
// initialized, so heading lookups and JSON output never see nil.
func NewPageRecord(url string) PageRecord {
	headings := make(map[string][]string, len(HeadingLevels))
	for _, lvl := range HeadingLevels {
		headings[lvl] = []string{}
	}
	return PageRecord{
		URL:      url,
		Headings: headings,
		Links:    []Link{},
		Images:   []Image{},
		Forms:    []Form{},
	}
}

// HeadingCount returns the number of headings at level (e.g. "h1").
func (p PageRecord) HeadingCount(level string) int {
	return len(p.Headings[level])
}

// TotalHeadings returns the number of headings across all levels.
func (p PageRecord) TotalHeadings() int {
	n := 0
	for _, hs := range p.Headings {
		n += len(hs)
	}
	return n
}
