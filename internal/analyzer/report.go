package analyzer

import (
	"fmt"
	"strings"

	"github.com/sells-group/site-analyzer/internal/model"
)

// FormatReport renders an analysis result as a markdown report.
func FormatReport(url string, result model.AnalysisResult, variant model.SchemaVariant) string {
	var b strings.Builder
	s := Summarize(result, variant)

	fmt.Fprintf(&b, "# Website Analysis: %s\n\n", url)

	b.WriteString("## Summary\n")
	if s.HasOverall {
		fmt.Fprintf(&b, "- Overall score: %.1f/10\n", s.OverallScore)
	} else {
		b.WriteString("- Overall score: n/a\n")
	}
	if s.Strongest != "" {
		fmt.Fprintf(&b, "- Strongest area: %s\n", s.Strongest)
		fmt.Fprintf(&b, "- Weakest area: %s\n", s.Weakest)
	}
	if s.Degraded {
		b.WriteString("- Note: the model response could not be parsed; scores are placeholders\n")
	}
	b.WriteString("\n")

	for _, c := range Categories(variant) {
		block, ok := result[c.Key].(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s (%v)\n", FormatLabel(c.Key), block["score"])
		if subs, ok := block["sub_scores"].(map[string]any); ok && len(subs) > 0 {
			for _, name := range c.SubScores {
				if v, ok := subs[name]; ok {
					fmt.Fprintf(&b, "- %s: %v\n", FormatLabel(name), v)
				}
			}
		}
		writeList(&b, "Issues", block["issues"])
		writeList(&b, "Recommendations", block["recommendations"])
		b.WriteString("\n")
	}

	for _, f := range ListFields(variant) {
		items := stringList(result[f])
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", FormatLabel(f))
		for i, item := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
		b.WriteString("\n")
	}

	if m, ok := result["technical_metrics"].(model.TechnicalMetrics); ok {
		b.WriteString("## Technical Metrics\n")
		fmt.Fprintf(&b, "- Content length: %d\n", m.ContentLength)
		fmt.Fprintf(&b, "- Heading structure: %d/5\n", m.HeadingStructureScore)
		fmt.Fprintf(&b, "- Domain credibility: %d/10\n", m.DomainCredibility)
		fmt.Fprintf(&b, "- Links / images / forms: %d / %d / %d\n", m.LinkCount, m.ImageCount, m.FormCount)
		fmt.Fprintf(&b, "- HTTPS: %s\n", yesNo(m.HasHTTPS))
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, v any) {
	items := stringList(v)
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// stringList accepts both decoded JSON arrays and native string slices.
func stringList(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
