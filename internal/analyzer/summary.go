package analyzer

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/site-analyzer/internal/model"
)

// ScoreEntry is a parsed category score.
type ScoreEntry struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// Summary condenses an AnalysisResult for reports and listings.
type Summary struct {
	OverallScore float64      `json:"overall_score"`
	HasOverall   bool         `json:"has_overall"`
	Strongest    string       `json:"strongest,omitempty"`
	Weakest      string       `json:"weakest,omitempty"`
	Categories   []ScoreEntry `json:"categories"`
	Degraded     bool         `json:"degraded"`
}

// ParseScore reads the numeric part of an "N/10" score. Values that are not
// strings, lack a '/', or have a non-numeric prefix report false.
func ParseScore(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	idx := strings.Index(s, "/")
	if idx < 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// CategoryScores returns the parseable category scores of result in the
// declaration order of variant's categories.
func CategoryScores(result model.AnalysisResult, variant model.SchemaVariant) []ScoreEntry {
	var out []ScoreEntry
	for _, c := range Categories(variant) {
		block, ok := result[c.Key].(map[string]any)
		if !ok {
			continue
		}
		if score, ok := ParseScore(block["score"]); ok {
			out = append(out, ScoreEntry{Key: c.Key, Score: score})
		}
	}
	return out
}

// StrongestWeakest returns the highest and lowest scoring entries. Ties go
// to the entry seen first. ok is false when entries is empty.
func StrongestWeakest(entries []ScoreEntry) (strongest, weakest ScoreEntry, ok bool) {
	if len(entries) == 0 {
		return ScoreEntry{}, ScoreEntry{}, false
	}
	strongest, weakest = entries[0], entries[0]
	for _, e := range entries[1:] {
		if e.Score > strongest.Score {
			strongest = e
		}
		if e.Score < weakest.Score {
			weakest = e
		}
	}
	return strongest, weakest, true
}

// FormatLabel turns a category key such as "seo_analysis" into "Seo".
func FormatLabel(key string) string {
	name := strings.TrimSuffix(key, "_analysis")
	name = strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.English).String(name)
}

// Summarize computes the overall score, category scores and the strongest
// and weakest areas of result.
func Summarize(result model.AnalysisResult, variant model.SchemaVariant) Summary {
	s := Summary{
		Categories: CategoryScores(result, variant),
		Degraded:   IsDegraded(result),
	}
	s.OverallScore, s.HasOverall = ParseScore(result["overall_score"])
	if strongest, weakest, ok := StrongestWeakest(s.Categories); ok {
		s.Strongest = FormatLabel(strongest.Key)
		s.Weakest = FormatLabel(weakest.Key)
	}
	return s
}
