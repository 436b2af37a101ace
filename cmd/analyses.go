package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/scrape"
	"github.com/sells-group/site-analyzer/internal/store"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "Inspect stored analyses",
	Long:  "Commands for listing, viewing, and summarizing stored analyses.",
}

// -- analyses list --

var analysesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		recent, err := st.ListRecent(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "analyses list")
		}

		if len(recent) == 0 {
			fmt.Fprintln(os.Stderr, "No analyses found.")
			return nil
		}

		formatAnalysesList(os.Stdout, recent)
		return nil
	},
}

// -- analyses show --

var analysesShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show full details of an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a, err := st.GetAnalysis(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "analyses show")
		}

		format, _ := cmd.Flags().GetString("format")
		return writeAnalysis(os.Stdout, a, format)
	},
}

// -- analyses stats --

var analysesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate analysis statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "analyses stats")
		}
		formatStats(os.Stdout, stats)
		return nil
	},
}

func init() {
	analysesListCmd.Flags().Int("limit", store.DefaultRecentLimit, "max number of analyses to display")
	analysesShowCmd.Flags().String("format", "json", "output format: json or yaml")

	analysesCmd.AddCommand(analysesListCmd)
	analysesCmd.AddCommand(analysesShowCmd)
	analysesCmd.AddCommand(analysesStatsCmd)
	rootCmd.AddCommand(analysesCmd)
}

// formatAnalysesList writes a tabular list of analyses to out.
func formatAnalysesList(out io.Writer, analyses []model.AnalysisSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tURL\tSCORE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t---\t-----\t-------")

	for _, a := range analyses {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncateID(a.ID),
			scrape.Truncate(a.URL, 50),
			orDash(a.OverallScore),
			a.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// writeAnalysis renders a single analysis as JSON or YAML.
func writeAnalysis(out io.Writer, a *model.Analysis, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// formatStats writes aggregate stats to out.
func formatStats(out io.Writer, s *model.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total analyses:\t%d\n", s.TotalAnalyses)
	_, _ = fmt.Fprintf(w, "Last 24h:\t%d\n", s.Last24h)
	_, _ = fmt.Fprintf(w, "Unique URLs:\t%d\n", s.UniqueURLs)
	_, _ = fmt.Fprintf(w, "Degraded:\t%d\n", s.DegradedAnalyses)
	if s.TotalAnalyses > 0 {
		_, _ = fmt.Fprintf(w, "Avg overall score:\t%.1f/10\n", s.AvgOverallScore)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
