package model

import (
	"strings"
	"time"
)

// Chunk is a contiguous slice of page text. Start and End are rune offsets
// into the source text; Index is the chunk's position in the split order.
type Chunk struct {
	Content string `json:"content"`
	Index   int    `json:"index"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Query is a lowercase, whitespace-separated keyword list for one analysis
// facet (e.g. "seo ux content technical conversion").
type Query string

// Tokens returns the lowercased whitespace-delimited keywords of q.
func (q Query) Tokens() []string {
	return strings.Fields(strings.ToLower(string(q)))
}

// Facet is one configured selection pass: a query and its per-query cap.
type Facet struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Query Query  `json:"query" yaml:"query" mapstructure:"query"`
	Limit int    `json:"limit" yaml:"limit" mapstructure:"limit"`
}

// Selection is the ordered set of chunk contents picked for one query.
type Selection struct {
	Query  Query    `json:"query"`
	Chunks []string `json:"chunks"`
}

// SchemaVariant selects the structured output contract requested from the
// model and the shape of any fallback result.
type SchemaVariant string

const (
	SchemaBasic    SchemaVariant = "basic"
	SchemaExtended SchemaVariant = "extended"
)

// Valid reports whether v is a known variant.
func (v SchemaVariant) Valid() bool {
	return v == SchemaBasic || v == SchemaExtended
}

// FallbackMode controls what happens when a model response cannot be parsed.
type FallbackMode string

const (
	// FallbackStrict surfaces a MalformedResponse error.
	FallbackStrict FallbackMode = "strict"
	// FallbackDegraded returns a schema-conformant placeholder result.
	FallbackDegraded FallbackMode = "degraded"
)

// Valid reports whether m is a known fallback mode.
func (m FallbackMode) Valid() bool {
	return m == FallbackStrict || m == FallbackDegraded
}

// TechnicalMetrics are deterministic structural signals computed from a page.
type TechnicalMetrics struct {
	ContentLength          int            `json:"content_length" yaml:"content_length"`
	HeadingStructureScore  int            `json:"heading_structure_score" yaml:"heading_structure_score"`
	DomainCredibility      int            `json:"domain_credibility" yaml:"domain_credibility"`
	LinkCount              int            `json:"link_count" yaml:"link_count"`
	ImageCount             int            `json:"image_count" yaml:"image_count"`
	ImagesMissingAlt       int            `json:"images_missing_alt" yaml:"images_missing_alt"`
	FormCount              int            `json:"form_count" yaml:"form_count"`
	HasHTTPS               bool           `json:"has_https" yaml:"has_https"`
	TitleLength            int            `json:"title_length" yaml:"title_length"`
	HasMetaDescription     bool           `json:"has_meta_description" yaml:"has_meta_description"`
	MetaDescriptionLength  int            `json:"meta_description_length" yaml:"meta_description_length"`
	HeadingCounts          map[string]int `json:"heading_counts" yaml:"heading_counts"`
	DynamicContentRendered bool           `json:"dynamic_content_rendered" yaml:"dynamic_content_rendered"`
}

// AnalysisResult is the normalized model output, enriched with
// technical_metrics and analysis_metadata before persistence.
type AnalysisResult map[string]any

// Analysis is a persisted analysis record.
type Analysis struct {
	ID        string         `json:"id" yaml:"id"`
	URL       string         `json:"url" yaml:"url"`
	Result    AnalysisResult `json:"analysis" yaml:"analysis"`
	Page      *PageRecord    `json:"page,omitempty" yaml:"page,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// AnalysisSummary is the listing form of an Analysis.
type AnalysisSummary struct {
	ID           string    `json:"id" yaml:"id"`
	URL          string    `json:"url" yaml:"url"`
	OverallScore string    `json:"overall_score,omitempty" yaml:"overall_score,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Stats aggregates the persisted analyses.
type Stats struct {
	TotalAnalyses    int     `json:"total_analyses" yaml:"total_analyses"`
	Last24h          int     `json:"last_24h" yaml:"last_24h"`
	UniqueURLs       int     `json:"unique_urls" yaml:"unique_urls"`
	DegradedAnalyses int     `json:"degraded_analyses" yaml:"degraded_analyses"`
	AvgOverallScore  float64 `json:"avg_overall_score" yaml:"avg_overall_score"`
}
