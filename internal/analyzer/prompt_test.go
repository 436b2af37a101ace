package analyzer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-analyzer/internal/model"
)

func TestMergeSelections(t *testing.T) {
	t.Parallel()

	sels := []model.Selection{
		{Query: "a", Chunks: []string{"one", "two"}},
		{Query: "b", Chunks: []string{"two", "three"}},
		{Query: "c", Chunks: []string{"one", "four"}},
	}

	assert.Equal(t, []string{"one", "two", "three", "four"}, MergeSelections(sels, 8))
	assert.Equal(t, []string{"one", "two"}, MergeSelections(sels, 2))

	empty := MergeSelections(sels, 0)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Empty(t, MergeSelections(nil, 8))
}

func promptPage() model.PageRecord {
	p := model.NewPageRecord("https://example.com")
	p.Title = "Example Store"
	p.TextContent = "Welcome to the store."
	p.Headings["h1"] = []string{"Welcome"}
	p.Headings["h2"] = []string{"Products", "Pricing", "Contact", "Blog", "Team", "Careers"}
	return p
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	page := promptPage()
	in := PromptInput{
		URL:     page.URL,
		Page:    page,
		Metrics: ExtractMetrics(page),
		Selections: []model.Selection{
			{Chunks: []string{"first chunk", "second chunk"}},
			{Chunks: []string{"second chunk"}},
		},
		MaxTotalChunks: 8,
		Variant:        model.SchemaBasic,
	}

	prompt := BuildPrompt(in)
	assert.Contains(t, prompt, "URL: https://example.com\n")
	assert.Contains(t, prompt, "Title: Example Store\n")
	assert.Contains(t, prompt, "Meta Description: (none)\n")
	assert.Contains(t, prompt, "- Heading Structure Score: 5/5\n")
	assert.Contains(t, prompt, "- HTTPS: yes\n")
	assert.Contains(t, prompt, "- H1: Welcome\n")
	assert.Contains(t, prompt, "- H2: Products | Pricing | Contact | Blog | Team\n")
	assert.NotContains(t, prompt, "Careers")
	assert.Contains(t, prompt, "first chunk"+ChunkDelimiter+"second chunk")
	assert.Equal(t, 1, strings.Count(prompt, "second chunk"))
	assert.Contains(t, prompt, Template(model.SchemaBasic))
	assert.NotContains(t, prompt, "performance_analysis")

	// Ordering: metadata, metrics, content, output contract.
	idxURL := strings.Index(prompt, "URL:")
	idxMetrics := strings.Index(prompt, "Technical Metrics:")
	idxContent := strings.Index(prompt, "Relevant Content:")
	idxContract := strings.Index(prompt, "Respond with ONLY")
	assert.True(t, idxURL < idxMetrics && idxMetrics < idxContent && idxContent < idxContract)

	assert.Equal(t, prompt, BuildPrompt(in))
}

func TestBuildPrompt_NoContent(t *testing.T) {
	t.Parallel()

	page := model.NewPageRecord("http://example.org")
	prompt := BuildPrompt(PromptInput{URL: page.URL, Page: page, MaxTotalChunks: 8, Variant: model.SchemaExtended})

	assert.Contains(t, prompt, "(no page content matched the analysis focus)")
	assert.NotContains(t, prompt, "Headings:")
	assert.Contains(t, prompt, "performance_analysis")
	assert.Contains(t, prompt, "risk_factors")
}

func TestTemplate_ValidJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		variant model.SchemaVariant
		keys    int
	}{
		{model.SchemaBasic, 1 + 5 + 2},
		{model.SchemaExtended, 1 + 8 + 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			t.Parallel()

			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(Template(tt.variant)), &doc))
			assert.Len(t, doc, tt.keys)
			assert.Contains(t, doc, "overall_score")

			for _, c := range Categories(tt.variant) {
				block, ok := doc[c.Key].(map[string]any)
				require.True(t, ok, c.Key)
				assert.Contains(t, block, "score")
				assert.Contains(t, block, "issues")
				assert.Contains(t, block, "recommendations")
				if len(c.SubScores) > 0 {
					subs, ok := block["sub_scores"].(map[string]any)
					require.True(t, ok, c.Key)
					assert.Len(t, subs, len(c.SubScores))
				}
			}
			for _, f := range ListFields(tt.variant) {
				assert.Contains(t, doc, f)
			}
		})
	}
}
