package analyzer

import (
	"net/url"
	"strings"

	"github.com/sells-group/site-analyzer/internal/model"
)

// Domain credibility levels. The heuristic only looks at the host name and
// is a placeholder for a real reputation signal.
const (
	credibilityInstitutional = 8
	credibilityDefault       = 6
	credibilitySubdomain     = 4
)

var institutionalMarkers = []string{".gov.", ".edu.", ".ac.", ".mil."}

var institutionalSuffixes = []string{".gov", ".edu", ".org", ".mil"}

// ExtractMetrics computes the deterministic structural metrics of page.
func ExtractMetrics(page model.PageRecord) model.TechnicalMetrics {
	m := model.TechnicalMetrics{
		ContentLength:          len([]rune(page.TextContent)),
		HeadingStructureScore:  HeadingScore(page),
		DomainCredibility:      DomainCredibility(page.URL),
		LinkCount:              len(page.Links),
		ImageCount:             len(page.Images),
		FormCount:              len(page.Forms),
		HasHTTPS:               strings.HasPrefix(strings.ToLower(page.URL), "https://"),
		TitleLength:            len([]rune(strings.TrimSpace(page.Title))),
		HasMetaDescription:     strings.TrimSpace(page.MetaDescription) != "",
		MetaDescriptionLength:  len([]rune(strings.TrimSpace(page.MetaDescription))),
		HeadingCounts:          make(map[string]int, len(model.HeadingLevels)),
		DynamicContentRendered: page.Dynamic,
	}
	for _, img := range page.Images {
		if strings.TrimSpace(img.Alt) == "" {
			m.ImagesMissingAlt++
		}
	}
	for _, lvl := range model.HeadingLevels {
		m.HeadingCounts[lvl] = page.HeadingCount(lvl)
	}
	return m
}

// HeadingScore rates the heading outline from 0 to 5: three points for
// having an h1, minus two when there is more than one, plus one point per
// three headings overall, capped at two.
func HeadingScore(page model.PageRecord) int {
	score := 0
	h1 := page.HeadingCount("h1")
	if h1 > 0 {
		score += 3
	}
	if h1 > 1 {
		score -= 2
	}
	score += min(page.TotalHeadings()/3, 2)
	return max(0, min(score, 5))
}

// DomainCredibility scores the host of rawURL: institutional domains rank
// highest, apparent sub-domains lowest. A leading "www." is ignored.
func DomainCredibility(rawURL string) int {
	host := hostOf(rawURL)
	if host == "" {
		return credibilityDefault
	}
	for _, s := range institutionalSuffixes {
		if strings.HasSuffix(host, s) {
			return credibilityInstitutional
		}
	}
	for _, m := range institutionalMarkers {
		if strings.Contains(host, m) {
			return credibilityInstitutional
		}
	}
	if strings.Count(host, ".") >= 2 {
		return credibilitySubdomain
	}
	return credibilityDefault
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
