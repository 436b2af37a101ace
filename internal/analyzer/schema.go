package analyzer

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/model"
)

// Category is one scored section of the analysis report.
type Category struct {
	Key       string   // JSON key, e.g. "seo_analysis"
	Focus     string   // what the model should assess
	SubScores []string // extended variant only
}

var basicCategories = []Category{
	{Key: "seo_analysis", Focus: "titles, meta description, heading hierarchy, keyword usage"},
	{Key: "ux_analysis", Focus: "navigation, readability, visual hierarchy, mobile friendliness"},
	{Key: "content_analysis", Focus: "clarity, depth, tone, freshness of the copy"},
	{Key: "conversion_analysis", Focus: "calls to action, value proposition, forms, friction"},
	{Key: "technical_analysis", Focus: "markup quality, links, security, crawlability"},
}

var extendedCategories = []Category{
	{Key: "seo_analysis", Focus: basicCategories[0].Focus,
		SubScores: []string{"title_tags", "meta_descriptions", "heading_hierarchy", "keyword_usage"}},
	{Key: "ux_analysis", Focus: basicCategories[1].Focus,
		SubScores: []string{"navigation", "readability", "visual_hierarchy", "mobile_friendliness"}},
	{Key: "content_analysis", Focus: basicCategories[2].Focus,
		SubScores: []string{"clarity", "depth", "tone", "freshness"}},
	{Key: "conversion_analysis", Focus: basicCategories[3].Focus,
		SubScores: []string{"calls_to_action", "value_proposition", "forms", "friction"}},
	{Key: "technical_analysis", Focus: basicCategories[4].Focus,
		SubScores: []string{"markup_quality", "link_health", "security", "crawlability"}},
	{Key: "performance_analysis", Focus: "page weight, render-blocking resources, media optimization",
		SubScores: []string{"page_weight", "render_blocking", "media_optimization"}},
	{Key: "accessibility_analysis", Focus: "alt text, semantic structure, contrast, keyboard navigation",
		SubScores: []string{"alt_text", "semantic_structure", "contrast", "keyboard_navigation"}},
	{Key: "trust_analysis", Focus: "credibility signals, contact details, social proof, policies",
		SubScores: []string{"credibility_signals", "contact_information", "social_proof", "policies"}},
}

// Categories returns the scored categories of variant in declaration order.
// Unknown variants are treated as basic.
func Categories(variant model.SchemaVariant) []Category {
	if variant == model.SchemaExtended {
		return extendedCategories
	}
	return basicCategories
}

// ListFields returns the top-level string-list fields of variant.
func ListFields(variant model.SchemaVariant) []string {
	fields := []string{"key_insights", "priority_actions"}
	if variant == model.SchemaExtended {
		fields = append(fields, "competitive_advantages", "risk_factors")
	}
	return fields
}

// CategoryReport is the per-category block of a basic report.
type CategoryReport struct {
	Score           string   `json:"score" jsonschema:"required,pattern=^[0-9]+(\\.[0-9]+)?/10$,description=Score formatted as N/10"`
	Issues          []string `json:"issues" jsonschema:"required"`
	Recommendations []string `json:"recommendations" jsonschema:"required"`
}

// DetailedCategoryReport is the per-category block of an extended report.
type DetailedCategoryReport struct {
	Score           string            `json:"score" jsonschema:"required,pattern=^[0-9]+(\\.[0-9]+)?/10$,description=Score formatted as N/10"`
	SubScores       map[string]string `json:"sub_scores" jsonschema:"required"`
	Issues          []string          `json:"issues" jsonschema:"required"`
	Recommendations []string          `json:"recommendations" jsonschema:"required"`
}

// BasicReport documents the basic variant's output contract.
type BasicReport struct {
	OverallScore       string         `json:"overall_score" jsonschema:"required"`
	SEOAnalysis        CategoryReport `json:"seo_analysis" jsonschema:"required"`
	UXAnalysis         CategoryReport `json:"ux_analysis" jsonschema:"required"`
	ContentAnalysis    CategoryReport `json:"content_analysis" jsonschema:"required"`
	ConversionAnalysis CategoryReport `json:"conversion_analysis" jsonschema:"required"`
	TechnicalAnalysis  CategoryReport `json:"technical_analysis" jsonschema:"required"`
	KeyInsights        []string       `json:"key_insights" jsonschema:"required"`
	PriorityActions    []string       `json:"priority_actions" jsonschema:"required"`
}

// ExtendedReport documents the extended variant's output contract.
type ExtendedReport struct {
	OverallScore          string                 `json:"overall_score" jsonschema:"required"`
	SEOAnalysis           DetailedCategoryReport `json:"seo_analysis" jsonschema:"required"`
	UXAnalysis            DetailedCategoryReport `json:"ux_analysis" jsonschema:"required"`
	ContentAnalysis       DetailedCategoryReport `json:"content_analysis" jsonschema:"required"`
	ConversionAnalysis    DetailedCategoryReport `json:"conversion_analysis" jsonschema:"required"`
	TechnicalAnalysis     DetailedCategoryReport `json:"technical_analysis" jsonschema:"required"`
	PerformanceAnalysis   DetailedCategoryReport `json:"performance_analysis" jsonschema:"required"`
	AccessibilityAnalysis DetailedCategoryReport `json:"accessibility_analysis" jsonschema:"required"`
	TrustAnalysis         DetailedCategoryReport `json:"trust_analysis" jsonschema:"required"`
	KeyInsights           []string               `json:"key_insights" jsonschema:"required"`
	PriorityActions       []string               `json:"priority_actions" jsonschema:"required"`
	CompetitiveAdvantages []string               `json:"competitive_advantages" jsonschema:"required"`
	RiskFactors           []string               `json:"risk_factors" jsonschema:"required"`
}

// JSONSchema reflects the report contract of variant into a JSON Schema
// document.
func JSONSchema(variant model.SchemaVariant) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	switch variant {
	case model.SchemaBasic:
		s := reflector.Reflect(&BasicReport{})
		s.Title = "Basic website analysis"
		return s, nil
	case model.SchemaExtended:
		s := reflector.Reflect(&ExtendedReport{})
		s.Title = "Extended website analysis"
		return s, nil
	default:
		return nil, eris.Errorf("analyzer: unknown schema variant %q", variant)
	}
}
