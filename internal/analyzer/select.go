package analyzer

import (
	"strings"

	"github.com/sells-group/site-analyzer/internal/model"
)

// RelevanceScorer scores a chunk against a query. A chunk is a candidate for
// selection when its score is positive. Selection keeps document order, so
// scorers only decide membership, not rank.
type RelevanceScorer interface {
	Score(content string, query model.Query) float64
}

// KeywordScorer counts the query tokens that appear as substrings of the
// lowercased chunk content.
type KeywordScorer struct{}

// Score implements RelevanceScorer.
func (KeywordScorer) Score(content string, query model.Query) float64 {
	lower := strings.ToLower(content)
	hits := 0
	for _, tok := range query.Tokens() {
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return float64(hits)
}

// Select returns the contents of at most limit chunks that the scorer finds
// relevant to query, in their original order. A nil scorer means
// KeywordScorer.
func Select(chunks []model.Chunk, query model.Query, limit int, scorer RelevanceScorer) []string {
	picked := []string{}
	if limit <= 0 {
		return picked
	}
	if scorer == nil {
		scorer = KeywordScorer{}
	}

	for _, c := range chunks {
		if scorer.Score(c.Content, query) <= 0 {
			continue
		}
		picked = append(picked, c.Content)
		if len(picked) == limit {
			break
		}
	}
	return picked
}

// SelectFacets runs Select once per facet, in declaration order.
func SelectFacets(chunks []model.Chunk, facets []model.Facet, scorer RelevanceScorer) []model.Selection {
	out := make([]model.Selection, 0, len(facets))
	for _, f := range facets {
		out = append(out, model.Selection{
			Query:  f.Query,
			Chunks: Select(chunks, f.Query, f.Limit, scorer),
		})
	}
	return out
}
