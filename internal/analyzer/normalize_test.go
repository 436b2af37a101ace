package analyzer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-analyzer/internal/model"
)

func TestStripFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `  {"a":1}  `, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line", "```{\"a\":1}```", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	t.Parallel()

	want := model.AnalysisResult{
		"overall_score": "8/10",
		"seo_analysis": map[string]any{
			"score":           "7/10",
			"issues":          []any{"Missing meta description"},
			"recommendations": []any{"Add a meta description"},
		},
		"key_insights": []any{"Clear value proposition"},
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	for _, mode := range []model.FallbackMode{model.FallbackStrict, model.FallbackDegraded} {
		got, err := Normalize(string(raw), model.SchemaBasic, mode)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		fenced, err := Normalize("```json\n"+string(raw)+"\n```", model.SchemaBasic, mode)
		require.NoError(t, err)
		assert.Equal(t, want, fenced)
	}
}

func TestNormalize_RecoversEmbeddedObject(t *testing.T) {
	t.Parallel()

	raw := "Here is the analysis you asked for:\n{\"overall_score\": \"6/10\"}\nLet me know if you need more."
	got, err := Normalize(raw, model.SchemaBasic, model.FallbackStrict)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisResult{"overall_score": "6/10"}, got)
}

func TestNormalize_StrictMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"not json at all", "[1, 2, 3]", "null", "{broken", ""} {
		got, err := Normalize(raw, model.SchemaBasic, model.FallbackStrict)
		require.Error(t, err, raw)
		assert.Nil(t, got)

		var mre *MalformedResponseError
		require.True(t, errors.As(err, &mre), raw)
		assert.Equal(t, raw, mre.Raw)
		assert.Equal(t, KindMalformedResponse, KindOf(err))
	}
}

func TestNormalize_DegradedFallback(t *testing.T) {
	t.Parallel()

	for _, variant := range []model.SchemaVariant{model.SchemaBasic, model.SchemaExtended} {
		t.Run(string(variant), func(t *testing.T) {
			t.Parallel()

			raw := "I cannot produce JSON today."
			got, err := Normalize(raw, variant, model.FallbackDegraded)
			require.NoError(t, err)
			assert.True(t, IsDegraded(got))
			assert.Equal(t, raw, got["raw_response"])
			assertConforms(t, got, variant)
		})
	}
}

func TestFallback_Shape(t *testing.T) {
	t.Parallel()

	basic := Fallback(model.SchemaBasic, "x")
	assert.NotContains(t, basic, "performance_analysis")
	assert.NotContains(t, basic, "risk_factors")
	seo := basic["seo_analysis"].(map[string]any)
	assert.NotContains(t, seo, "sub_scores")

	extended := Fallback(model.SchemaExtended, "x")
	trust := extended["trust_analysis"].(map[string]any)
	subs := trust["sub_scores"].(map[string]any)
	assert.Len(t, subs, 4)
	for _, v := range subs {
		assert.Equal(t, "5/10", v)
	}
}

func TestIsDegraded(t *testing.T) {
	t.Parallel()

	assert.False(t, IsDegraded(model.AnalysisResult{"overall_score": "7/10"}))
	assert.False(t, IsDegraded(model.AnalysisResult{"analysis_status": 1}))
	assert.True(t, IsDegraded(model.AnalysisResult{"analysis_status": "degraded"}))
}

// assertConforms checks that result carries every key variant requires,
// with parseable scores and list-valued fields.
func assertConforms(t *testing.T, result model.AnalysisResult, variant model.SchemaVariant) {
	t.Helper()

	_, ok := ParseScore(result["overall_score"])
	assert.True(t, ok, "overall_score")

	for _, c := range Categories(variant) {
		block, ok := result[c.Key].(map[string]any)
		require.True(t, ok, c.Key)

		_, ok = ParseScore(block["score"])
		assert.True(t, ok, c.Key)
		assert.IsType(t, []any{}, block["issues"], c.Key)
		assert.IsType(t, []any{}, block["recommendations"], c.Key)

		if len(c.SubScores) > 0 {
			subs, ok := block["sub_scores"].(map[string]any)
			require.True(t, ok, c.Key)
			for _, name := range c.SubScores {
				_, ok := ParseScore(subs[name])
				assert.True(t, ok, "%s.%s", c.Key, name)
			}
		}
	}
	for _, f := range ListFields(variant) {
		assert.IsType(t, []any{}, result[f], f)
	}
}
