package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/llm"
	"github.com/sells-group/site-analyzer/internal/scrape"
	"github.com/sells-group/site-analyzer/internal/store"
)

// analyzerEnv holds the store, scraper chain and analyzer needed by the
// analyze, batch and serve commands.
type analyzerEnv struct {
	Store     store.Store // nil with --no-save
	Scraper   *scrape.Chain
	Generator llm.Generator
	Analyzer  *analyzer.Analyzer
}

// Close releases resources held by the environment.
func (e *analyzerEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initAnalyzer validates the configuration and builds the analysis
// environment. withStore=false skips opening the database. Callers should
// defer env.Close().
func initAnalyzer(ctx context.Context, withStore bool) (*analyzerEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, eris.Wrap(err, "init llm")
	}

	env := &analyzerEnv{
		Scraper:   scrape.FromConfig(cfg.Crawl),
		Generator: gen,
		Analyzer:  analyzer.New(analyzer.OptionsFromConfig(cfg), gen),
	}

	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	zap.L().Debug("analyzer environment ready",
		zap.String("provider", gen.Provider()),
		zap.String("model", gen.Model()),
		zap.String("schema", string(env.Analyzer.Variant())),
		zap.Bool("browser_fallback", cfg.Crawl.Browser.Enabled),
		zap.Bool("store", withStore),
	)
	return env, nil
}
