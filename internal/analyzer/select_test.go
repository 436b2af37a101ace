package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-analyzer/internal/model"
)

func testChunks(contents ...string) []model.Chunk {
	out := make([]model.Chunk, len(contents))
	for i, c := range contents {
		out[i] = model.Chunk{Content: c, Index: i}
	}
	return out
}

type fixedScorer map[string]float64

func (f fixedScorer) Score(content string, _ model.Query) float64 {
	return f[content]
}

func TestKeywordScorer(t *testing.T) {
	t.Parallel()

	s := KeywordScorer{}
	assert.Equal(t, 2.0, s.Score("Strong SEO and clean UX", "seo ux content"))
	assert.Equal(t, 0.0, s.Score("weather report", "seo ux"))
	assert.Equal(t, 1.0, s.Score("Our content strategy", "con"))
	assert.Equal(t, 0.0, s.Score("anything", ""))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	chunks := testChunks(
		"Our SEO strategy",
		"Weather today",
		"Great UX design",
		"Conversion rates improved",
	)

	t.Run("document order", func(t *testing.T) {
		t.Parallel()
		got := Select(chunks, "ux seo", 5, nil)
		assert.Equal(t, []string{"Our SEO strategy", "Great UX design"}, got)
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()
		got := Select(chunks, "seo ux conversion", 2, nil)
		assert.Equal(t, []string{"Our SEO strategy", "Great UX design"}, got)
	})

	t.Run("non positive limit", func(t *testing.T) {
		t.Parallel()
		for _, limit := range []int{0, -1} {
			got := Select(chunks, "seo", limit, nil)
			require.NotNil(t, got)
			assert.Empty(t, got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		got := Select(chunks, "pricing", 3, nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty chunks", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Select(nil, "seo", 3, nil))
	})

	t.Run("custom scorer", func(t *testing.T) {
		t.Parallel()
		scorer := fixedScorer{"Weather today": 0.9, "Conversion rates improved": 0.1}
		got := Select(chunks, "ignored", 5, scorer)
		assert.Equal(t, []string{"Weather today", "Conversion rates improved"}, got)
	})
}

func TestSelect_Recall(t *testing.T) {
	t.Parallel()

	chunks := Split(sampleText(), 120, 20)
	query := model.Query("pricing heading")
	got := Select(chunks, query, 4, nil)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 4)
	for _, c := range got {
		lower := strings.ToLower(c)
		assert.True(t, strings.Contains(lower, "pricing") || strings.Contains(lower, "heading"), c)
	}
}

func TestSelectFacets(t *testing.T) {
	t.Parallel()

	chunks := testChunks("seo tips", "ux tips", "trust badges")
	facets := []model.Facet{
		{Name: "trust", Query: "trust", Limit: 1},
		{Name: "seo", Query: "seo ux", Limit: 1},
		{Name: "none", Query: "seo", Limit: 0},
	}

	got := SelectFacets(chunks, facets, nil)
	require.Len(t, got, 3)
	assert.Equal(t, model.Query("trust"), got[0].Query)
	assert.Equal(t, []string{"trust badges"}, got[0].Chunks)
	assert.Equal(t, []string{"seo tips"}, got[1].Chunks)
	assert.Empty(t, got[2].Chunks)
}
