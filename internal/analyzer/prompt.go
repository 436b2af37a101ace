package analyzer

import (
	"fmt"
	"strings"

	"github.com/sells-group/site-analyzer/internal/model"
)

// ChunkDelimiter separates selected chunks inside the prompt.
const ChunkDelimiter = "\n\n---\n\n"

// SystemPrompt is sent alongside every analysis prompt.
const SystemPrompt = "You are a meticulous website quality analyst. " +
	"You answer with a single valid JSON object and nothing else."

// maxHeadingsPerLevel bounds the heading lines listed in the prompt.
const maxHeadingsPerLevel = 5

// PromptInput carries everything BuildPrompt needs.
type PromptInput struct {
	URL            string
	Page           model.PageRecord
	Metrics        model.TechnicalMetrics
	Selections     []model.Selection
	MaxTotalChunks int
	Variant        model.SchemaVariant
}

// MergeSelections concatenates selections in order, drops exact duplicates
// keeping the first occurrence and caps the result at maxTotal chunks.
func MergeSelections(selections []model.Selection, maxTotal int) []string {
	merged := []string{}
	if maxTotal <= 0 {
		return merged
	}
	seen := make(map[string]bool)
	for _, sel := range selections {
		for _, c := range sel.Chunks {
			if seen[c] {
				continue
			}
			seen[c] = true
			merged = append(merged, c)
			if len(merged) == maxTotal {
				return merged
			}
		}
	}
	return merged
}

// BuildPrompt assembles the analysis prompt: a role line, page metadata,
// technical metrics, the merged content chunks and the output contract for
// in.Variant.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are an expert website analyst specializing in SEO, UX, content strategy and conversion optimization. ")
	b.WriteString("Analyze the website below and produce a structured quality assessment.\n\n")

	fmt.Fprintf(&b, "URL: %s\n", in.URL)
	fmt.Fprintf(&b, "Title: %s\n", orNone(in.Page.Title))
	fmt.Fprintf(&b, "Meta Description: %s\n\n", orNone(in.Page.MetaDescription))

	writeMetrics(&b, in.Metrics)
	writeHeadings(&b, in.Page)

	b.WriteString("Relevant Content:\n")
	chunks := MergeSelections(in.Selections, in.MaxTotalChunks)
	if len(chunks) == 0 {
		b.WriteString("(no page content matched the analysis focus)")
	} else {
		b.WriteString(strings.Join(chunks, ChunkDelimiter))
	}
	b.WriteString("\n\n")

	b.WriteString(Instructions(in.Variant))
	return b.String()
}

func writeMetrics(b *strings.Builder, m model.TechnicalMetrics) {
	b.WriteString("Technical Metrics:\n")
	fmt.Fprintf(b, "- Content Length: %d characters\n", m.ContentLength)
	fmt.Fprintf(b, "- Heading Structure Score: %d/5\n", m.HeadingStructureScore)
	fmt.Fprintf(b, "- Domain Credibility: %d/10\n", m.DomainCredibility)
	fmt.Fprintf(b, "- Links: %d\n", m.LinkCount)
	fmt.Fprintf(b, "- Images: %d (%d missing alt text)\n", m.ImageCount, m.ImagesMissingAlt)
	fmt.Fprintf(b, "- Forms: %d\n", m.FormCount)
	fmt.Fprintf(b, "- HTTPS: %s\n", yesNo(m.HasHTTPS))
	fmt.Fprintf(b, "- Rendered Dynamically: %s\n\n", yesNo(m.DynamicContentRendered))
}

func writeHeadings(b *strings.Builder, page model.PageRecord) {
	if page.TotalHeadings() == 0 {
		return
	}
	b.WriteString("Headings:\n")
	for _, lvl := range model.HeadingLevels {
		hs := page.Headings[lvl]
		if len(hs) == 0 {
			continue
		}
		if len(hs) > maxHeadingsPerLevel {
			hs = hs[:maxHeadingsPerLevel]
		}
		fmt.Fprintf(b, "- %s: %s\n", strings.ToUpper(lvl), strings.Join(hs, " | "))
	}
	b.WriteString("\n")
}

// Instructions returns the fixed output-contract block for variant.
func Instructions(variant model.SchemaVariant) string {
	var b strings.Builder
	b.WriteString("Respond with ONLY a JSON object in exactly this format:\n")
	b.WriteString(Template(variant))
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Every score is a string of the form \"N/10\".\n")
	b.WriteString("- Issues and recommendations must reference what is actually on the page.\n")
	b.WriteString("- Do not wrap the JSON in markdown or add commentary.")
	return b.String()
}

// Template renders the JSON skeleton the model must fill for variant.
func Template(variant model.SchemaVariant) string {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("  \"overall_score\": \"X/10\",\n")
	for _, c := range Categories(variant) {
		fmt.Fprintf(&b, "  %q: {\n", c.Key)
		b.WriteString("    \"score\": \"X/10\",\n")
		if len(c.SubScores) > 0 {
			parts := make([]string, len(c.SubScores))
			for i, s := range c.SubScores {
				parts[i] = fmt.Sprintf("%q: \"X/10\"", s)
			}
			fmt.Fprintf(&b, "    \"sub_scores\": {%s},\n", strings.Join(parts, ", "))
		}
		fmt.Fprintf(&b, "    \"issues\": [\"issue about %s\"],\n", c.Focus)
		b.WriteString("    \"recommendations\": [\"specific, actionable recommendation\"]\n")
		b.WriteString("  },\n")
	}
	lists := ListFields(variant)
	for i, f := range lists {
		fmt.Fprintf(&b, "  %q: [\"...\", \"...\"]", f)
		if i < len(lists)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
