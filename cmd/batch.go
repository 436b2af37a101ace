package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/scrape"
)

var (
	batchConcurrency int
	batchNoSave      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze every URL listed in a file (one per line, '-' for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls, err := loadURLs(args[0])
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			zap.L().Info("no urls to analyze")
			return nil
		}

		env, err := initAnalyzer(ctx, !batchNoSave)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		fetches := env.Scraper.ScrapeAll(ctx, urls, concurrency)

		var save saveFunc
		if env.Store != nil {
			save = func(ctx context.Context, url string, result model.AnalysisResult, page *model.PageRecord) (string, error) {
				a, err := env.Store.SaveAnalysis(ctx, url, result, page)
				if err != nil {
					return "", err
				}
				return a.ID, nil
			}
		}

		items := processBatch(ctx, fetches, concurrency, env.Analyzer.Analyze, save)
		formatBatchResults(os.Stdout, items)
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent analyses (default from config)")
	batchCmd.Flags().BoolVar(&batchNoSave, "no-save", false, "do not persist the analyses")
	rootCmd.AddCommand(batchCmd)
}

func loadURLs(path string) ([]string, error) {
	if path == "-" {
		return readURLs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open url file")
	}
	defer f.Close() //nolint:errcheck
	return readURLs(f)
}

// readURLs returns the distinct valid URLs in r, in order. Blank lines and
// lines starting with '#' are skipped; invalid URLs are logged and skipped.
func readURLs(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		u := strings.TrimSpace(sc.Text())
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}
		if !scrape.IsValidURL(u) {
			zap.L().Warn("batch: skipping invalid url", zap.Int("line", line), zap.String("url", u))
			continue
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: read urls")
	}
	return urls, nil
}

// analyzeFunc runs the analysis of one crawled page.
type analyzeFunc func(ctx context.Context, page model.PageRecord) (*analyzer.Outcome, error)

// saveFunc persists one analysis and returns its ID.
type saveFunc func(ctx context.Context, url string, result model.AnalysisResult, page *model.PageRecord) (string, error)

// batchItem is the outcome of one URL in a batch.
type batchItem struct {
	URL      string
	ID       string
	Score    string
	Degraded bool
	Err      error
}

// processBatch analyzes the successful fetches concurrently. save may be nil.
// Failures are recorded per item and never abort the batch.
func processBatch(ctx context.Context, fetches []scrape.Fetch, concurrency int, analyze analyzeFunc, save saveFunc) []batchItem {
	items := make([]batchItem, len(fetches))
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("urls", len(fetches)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, f := range fetches {
		items[i].URL = f.URL
		if f.Err != nil {
			items[i].Err = eris.Wrap(f.Err, "crawl")
			failed.Add(1)
			continue
		}
		g.Go(func() error {
			log := zap.L().With(zap.String("url", f.URL))

			out, err := analyze(gctx, f.Result.Page)
			if err != nil {
				failed.Add(1)
				items[i].Err = err
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			items[i].Score, _ = out.Result["overall_score"].(string)
			items[i].Degraded = out.FallbackUsed
			if save != nil {
				id, err := save(gctx, f.URL, out.Result, &f.Result.Page)
				if err != nil {
					failed.Add(1)
					items[i].Err = eris.Wrap(err, "save")
					log.Error("save failed", zap.Error(err))
					return nil
				}
				items[i].ID = id
			}

			succeeded.Add(1)
			log.Info("analysis complete", zap.String("overall_score", items[i].Score))
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return items
}

// formatBatchResults writes a table of batch outcomes to out.
func formatBatchResults(out io.Writer, items []batchItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "URL\tSCORE\tID\tSTATUS")
	_, _ = fmt.Fprintln(w, "---\t-----\t--\t------")

	for _, it := range items {
		status := "ok"
		switch {
		case it.Err != nil:
			status = "error: " + scrape.Truncate(it.Err.Error(), 60)
		case it.Degraded:
			status = "degraded"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			scrape.Truncate(it.URL, 50),
			orDash(it.Score),
			orDash(truncateID(it.ID)),
			status,
		)
	}
	_ = w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
