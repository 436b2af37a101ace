package scrape

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/site-analyzer/internal/model"
)

// Extract parses an HTML document and builds the PageRecord for pageURL.
// Script, style and noscript elements are dropped before text extraction.
// Links and images are capped at opts.MaxLinks and opts.MaxImages; forms are
// not capped.
func Extract(pageURL string, r io.Reader, opts Options) (model.PageRecord, error) {
	opts = opts.withDefaults()
	page := model.NewPageRecord(pageURL)

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return page, eris.Wrap(err, "scrape: parse html")
	}
	doc.Find("script, style, noscript").Remove()

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaDescription = strings.TrimSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))

	for _, lvl := range model.HeadingLevels {
		doc.Find(lvl).Each(func(_ int, s *goquery.Selection) {
			page.Headings[lvl] = append(page.Headings[lvl], CleanText(s.Text()))
		})
	}

	var text strings.Builder
	collectText(doc.Selection, &text)
	page.TextContent = CleanText(text.String())

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		page.Links = append(page.Links, model.Link{
			Text: CleanText(s.Text()),
			Href: s.AttrOr("href", ""),
		})
		return len(page.Links) < opts.MaxLinks
	})

	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		page.Images = append(page.Images, model.Image{
			Alt: s.AttrOr("alt", ""),
			Src: s.AttrOr("src", ""),
		})
		return len(page.Images) < opts.MaxImages
	})

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		page.Forms = append(page.Forms, model.Form{
			Action: s.AttrOr("action", ""),
			Method: s.AttrOr("method", "get"),
		})
	})

	page.FetchedAt = time.Now().UTC()
	return page, nil
}

// collectText appends every text node under sel, separated by spaces so
// adjacent block elements do not run together.
func collectText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			b.WriteString(s.Text())
			b.WriteByte(' ')
			return
		}
		collectText(s, b)
	})
}

// decodeBody converts body to UTF-8 using the charset named in the
// Content-Type header. Unknown or missing charsets leave body untouched.
func decodeBody(body []byte, contentType string) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return bytes.NewReader(body)
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return bytes.NewReader(body)
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return bytes.NewReader(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return bytes.NewReader(body)
	}
	return bytes.NewReader(decoded)
}
