package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/model"
)

const (
	placeholderScore = "5/10"
	statusDegraded   = "degraded"
)

// StripFences removes a surrounding markdown code fence (with or without a
// language tag) and trims whitespace.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// Normalize converts raw model output into an AnalysisResult. A response that
// parses as a JSON object is returned as parsed. Otherwise the span between
// the first '{' and the last '}' is tried. When both fail, strict mode
// returns a *MalformedResponseError and degraded mode returns Fallback.
func Normalize(raw string, variant model.SchemaVariant, mode model.FallbackMode) (model.AnalysisResult, error) {
	cleaned := StripFences(raw)

	result, err := parseObject(cleaned)
	if err == nil {
		return result, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if recovered, rerr := parseObject(cleaned[start : end+1]); rerr == nil {
			return recovered, nil
		}
	}

	if mode == model.FallbackStrict {
		return nil, &MalformedResponseError{Raw: raw, Cause: err}
	}
	return Fallback(variant, raw), nil
}

func parseObject(text string) (model.AnalysisResult, error) {
	var out model.AnalysisResult
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, eris.Wrap(err, "analyzer: decode response")
	}
	if out == nil {
		return nil, eris.New("analyzer: response is not a JSON object")
	}
	return out, nil
}

// Fallback builds a placeholder result that satisfies variant's schema. The
// unparsed model output is kept under raw_response.
func Fallback(variant model.SchemaVariant, raw string) model.AnalysisResult {
	result := model.AnalysisResult{
		"overall_score":   placeholderScore,
		"analysis_status": statusDegraded,
		"raw_response":    raw,
	}

	for _, c := range Categories(variant) {
		block := map[string]any{
			"score":           placeholderScore,
			"issues":          []any{"Automated analysis unavailable for this area"},
			"recommendations": []any{"Review this area manually or re-run the analysis"},
		}
		if len(c.SubScores) > 0 {
			subs := make(map[string]any, len(c.SubScores))
			for _, s := range c.SubScores {
				subs[s] = placeholderScore
			}
			block["sub_scores"] = subs
		}
		result[c.Key] = block
	}

	result["key_insights"] = []any{"The model response could not be parsed; scores are placeholders"}
	result["priority_actions"] = []any{"Re-run the analysis"}
	if variant == model.SchemaExtended {
		result["competitive_advantages"] = []any{}
		result["risk_factors"] = []any{"Analysis incomplete"}
	}
	return result
}

// IsDegraded reports whether result was produced by Fallback.
func IsDegraded(result model.AnalysisResult) bool {
	s, _ := result["analysis_status"].(string)
	return s == statusDegraded
}
