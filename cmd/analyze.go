package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/scrape"
)

var (
	analyzeSchema   string
	analyzeFallback string
	analyzeReport   bool
	analyzeNoSave   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Crawl and analyze a single page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url := strings.TrimSpace(args[0])
		if !scrape.IsValidURL(url) {
			return eris.Errorf("invalid url: %q", args[0])
		}
		applyAnalysisOverrides(analyzeSchema, analyzeFallback)

		env, err := initAnalyzer(ctx, !analyzeNoSave)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Scraper.Scrape(ctx, url)
		if err != nil {
			return eris.Wrap(err, "crawl")
		}

		out, err := env.Analyzer.Analyze(ctx, res.Page)
		if err != nil {
			return eris.Wrapf(err, "analyze %s", url)
		}

		id := ""
		if env.Store != nil {
			saved, err := env.Store.SaveAnalysis(ctx, url, out.Result, &res.Page)
			if err != nil {
				return eris.Wrap(err, "save analysis")
			}
			id = saved.ID
		}

		zap.L().Info("analysis complete",
			zap.String("url", url),
			zap.String("id", id),
			zap.String("source", res.Source),
			zap.Int64("input_tokens", out.Usage.InputTokens),
			zap.Int64("output_tokens", out.Usage.OutputTokens),
		)

		if analyzeReport {
			_, err = io.WriteString(os.Stdout, analyzer.FormatReport(url, out.Result, env.Analyzer.Variant()))
			return err
		}
		return writeOutcome(os.Stdout, id, url, out)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSchema, "schema", "", "report schema: basic or extended (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFallback, "fallback", "", "unparseable response handling: strict or degraded (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false, "print a markdown report instead of JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not persist the analysis")
	rootCmd.AddCommand(analyzeCmd)
}

// applyAnalysisOverrides replaces the configured schema and fallback with
// non-empty flag values. Validate rejects unknown values afterwards.
func applyAnalysisOverrides(schema, fallback string) {
	if schema != "" {
		cfg.Analysis.Schema = strings.ToLower(schema)
		// Fall back to the default facets of the new schema.
		cfg.Analysis.Facets = nil
	}
	if fallback != "" {
		cfg.Analysis.Fallback = strings.ToLower(fallback)
	}
}

type analyzeOutput struct {
	ID       string               `json:"id,omitempty"`
	URL      string               `json:"url"`
	Analysis model.AnalysisResult `json:"analysis"`
	Summary  analyzer.Summary     `json:"summary"`
}

// writeOutcome writes the analysis as indented JSON.
func writeOutcome(w io.Writer, id, url string, out *analyzer.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analyzeOutput{ID: id, URL: url, Analysis: out.Result, Summary: out.Summary}); err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return nil
}
