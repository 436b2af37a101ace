// Package analyzer turns a crawled page into a structured quality assessment.
// It chunks the page text, selects the chunks relevant to each analysis
// facet, assembles the prompt, calls the configured Generator and normalizes
// the response.
package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/llm"
	"github.com/sells-group/site-analyzer/internal/model"
)

// Options configures an Analyzer.
type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	MaxTotalChunks int
	Variant        model.SchemaVariant
	Fallback       model.FallbackMode
	Generation     llm.GenerationConfig

	// Facets overrides DefaultFacets(Variant) when non-empty.
	Facets []model.Facet

	// Scorer defaults to KeywordScorer.
	Scorer RelevanceScorer
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ChunkSize:      cfg.Analysis.ChunkSize,
		ChunkOverlap:   cfg.Analysis.ChunkOverlap,
		MaxTotalChunks: cfg.Analysis.MaxTotalChunks,
		Variant:        model.SchemaVariant(cfg.Analysis.Schema),
		Fallback:       model.FallbackMode(cfg.Analysis.Fallback),
		Generation:     llm.GenerationFromConfig(cfg.LLM),
		Facets:         cfg.Analysis.Facets,
	}
}

// DefaultFacets returns the selection passes used for variant when none are
// configured.
func DefaultFacets(variant model.SchemaVariant) []model.Facet {
	if variant != model.SchemaExtended {
		return []model.Facet{
			{Name: "overview", Query: "seo ux content technical conversion", Limit: 5},
		}
	}
	return []model.Facet{
		{Name: "seo", Query: "seo search title meta keyword heading", Limit: 2},
		{Name: "ux", Query: "navigation menu layout mobile design", Limit: 2},
		{Name: "content", Query: "about blog article guide story", Limit: 2},
		{Name: "conversion", Query: "contact signup buy pricing demo trial", Limit: 2},
		{Name: "technical", Query: "https cookie script api download", Limit: 2},
		{Name: "performance", Query: "fast speed load performance image video", Limit: 2},
		{Name: "accessibility", Query: "accessibility accessible alt screen reader", Limit: 2},
		{Name: "trust", Query: "privacy policy terms review testimonial certified secure", Limit: 2},
	}
}

// Outcome is the product of a successful Analyze call.
type Outcome struct {
	Result         model.AnalysisResult
	Summary        Summary
	Metrics        model.TechnicalMetrics
	Prompt         string
	Usage          llm.Usage
	ChunksTotal    int
	ChunksSelected int
	FallbackUsed   bool
}

// Analyzer runs the analysis pipeline against a Generator. It holds no
// per-request state and is safe for concurrent use.
type Analyzer struct {
	opts Options
	gen  llm.Generator
	now  func() time.Time
}

// New creates an Analyzer.
func New(opts Options, gen llm.Generator) *Analyzer {
	if opts.Variant == "" {
		opts.Variant = model.SchemaBasic
	}
	if opts.Fallback == "" {
		opts.Fallback = model.FallbackDegraded
	}
	if opts.Scorer == nil {
		opts.Scorer = KeywordScorer{}
	}
	return &Analyzer{opts: opts, gen: gen, now: time.Now}
}

// WithVariant returns a copy of a that produces variant. Configured facets
// are kept; default facets follow the new variant.
func (a *Analyzer) WithVariant(variant model.SchemaVariant) *Analyzer {
	cp := *a
	cp.opts.Variant = variant
	return &cp
}

// Variant returns the schema variant a produces.
func (a *Analyzer) Variant() model.SchemaVariant {
	return a.opts.Variant
}

// Provider and Model describe the Generator behind a.
func (a *Analyzer) Provider() string { return a.gen.Provider() }
func (a *Analyzer) Model() string    { return a.gen.Model() }

func (a *Analyzer) facets() []model.Facet {
	if len(a.opts.Facets) > 0 {
		return a.opts.Facets
	}
	return DefaultFacets(a.opts.Variant)
}

// Analyze runs the full pipeline for page.
func (a *Analyzer) Analyze(ctx context.Context, page model.PageRecord) (*Outcome, error) {
	if strings.TrimSpace(page.TextContent) == "" {
		return nil, ErrEmptyInput
	}
	log := zap.L().With(zap.String("url", page.URL), zap.String("schema", string(a.opts.Variant)))

	chunks := Split(page.TextContent, a.opts.ChunkSize, a.opts.ChunkOverlap)
	selections := SelectFacets(chunks, a.facets(), a.opts.Scorer)
	selected := MergeSelections(selections, a.opts.MaxTotalChunks)
	metrics := ExtractMetrics(page)

	prompt := BuildPrompt(PromptInput{
		URL:            page.URL,
		Page:           page,
		Metrics:        metrics,
		Selections:     selections,
		MaxTotalChunks: a.opts.MaxTotalChunks,
		Variant:        a.opts.Variant,
	})
	log.Debug("analyzer: prompt built",
		zap.Int("chunks_total", len(chunks)),
		zap.Int("chunks_selected", len(selected)),
		zap.Int("prompt_chars", len(prompt)),
	)

	resp, err := a.gen.Generate(ctx, llm.Request{
		System: SystemPrompt,
		Prompt: prompt,
		Config: a.opts.Generation,
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: generate")
	}

	result, err := a.normalize(resp)
	if err != nil {
		return nil, err
	}
	fallbackUsed := IsDegraded(result)
	if fallbackUsed {
		log.Warn("analyzer: model response unparseable, using fallback result")
	}

	result["technical_metrics"] = metrics
	result["analysis_metadata"] = map[string]any{
		"chunks_total":    len(chunks),
		"chunks_selected": len(selected),
		"content_length":  metrics.ContentLength,
		"schema_variant":  string(a.opts.Variant),
		"fallback_used":   fallbackUsed,
		"provider":        a.gen.Provider(),
		"model":           a.gen.Model(),
		"timestamp":       a.now().UTC().Format(time.RFC3339),
	}

	summary := Summarize(result, a.opts.Variant)
	log.Info("analyzer: analysis complete",
		zap.Float64("overall_score", summary.OverallScore),
		zap.String("strongest", summary.Strongest),
		zap.String("weakest", summary.Weakest),
		zap.Bool("fallback_used", fallbackUsed),
	)

	return &Outcome{
		Result:         result,
		Summary:        summary,
		Metrics:        metrics,
		Prompt:         prompt,
		Usage:          resp.Usage,
		ChunksTotal:    len(chunks),
		ChunksSelected: len(selected),
		FallbackUsed:   fallbackUsed,
	}, nil
}

// normalize picks the first candidate that parses. When none does, the
// first candidate goes through the configured fallback policy.
func (a *Analyzer) normalize(resp *llm.Response) (model.AnalysisResult, error) {
	for _, cand := range resp.Candidates {
		if result, err := Normalize(cand, a.opts.Variant, model.FallbackStrict); err == nil {
			return result, nil
		}
	}
	return Normalize(resp.Text, a.opts.Variant, a.opts.Fallback)
}
