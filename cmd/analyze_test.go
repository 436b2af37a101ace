package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/model"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestApplyAnalysisOverrides(t *testing.T) {
	withConfig(t, &config.Config{Analysis: config.AnalysisConfig{
		Schema:   "basic",
		Fallback: "degraded",
		Facets:   []model.Facet{{Name: "seo", Query: "seo", Limit: 2}},
	}})

	applyAnalysisOverrides("", "")
	assert.Equal(t, "basic", cfg.Analysis.Schema)
	assert.Len(t, cfg.Analysis.Facets, 1)

	applyAnalysisOverrides("Extended", "STRICT")
	assert.Equal(t, "extended", cfg.Analysis.Schema)
	assert.Equal(t, "strict", cfg.Analysis.Fallback)
	assert.Nil(t, cfg.Analysis.Facets)
}

func TestWriteOutcome(t *testing.T) {
	out := &analyzer.Outcome{
		Result:  model.AnalysisResult{"overall_score": "7/10"},
		Summary: analyzer.Summary{OverallScore: 7, HasOverall: true},
	}

	var buf bytes.Buffer
	require.NoError(t, writeOutcome(&buf, "id-1", "https://acme.com", out))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "id-1", got["id"])
	assert.Equal(t, "https://acme.com", got["url"])
	assert.Equal(t, "7/10", got["analysis"].(map[string]any)["overall_score"])
	assert.Equal(t, float64(7), got["summary"].(map[string]any)["overall_score"])
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSchema(&buf, model.SchemaBasic))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	props := got["properties"].(map[string]any)
	assert.Contains(t, props, "seo_analysis")
	assert.NotContains(t, props, "trust_analysis")

	assert.Error(t, writeSchema(&buf, model.SchemaVariant("premium")))
}
