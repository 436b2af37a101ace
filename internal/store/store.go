// Package store persists analyses in SQLite or Postgres.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/model"
)

// ErrNotFound is returned when an analysis ID does not exist.
var ErrNotFound = eris.New("store: analysis not found")

const (
	// DefaultRecentLimit is used when ListRecent gets a non-positive limit.
	DefaultRecentLimit = 10
	// MaxRecentLimit caps ListRecent.
	MaxRecentLimit = 100
)

// Store defines the persistence interface for analyses.
type Store interface {
	SaveAnalysis(ctx context.Context, url string, result model.AnalysisResult, page *model.PageRecord) (*model.Analysis, error)
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]model.AnalysisSummary, error)
	Stats(ctx context.Context) (*model.Stats, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend. Callers run Migrate.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// record is the column set shared by both backends.
type record struct {
	id        string
	url       string
	result    []byte
	page      []byte // nil when no page was stored
	score     *float64
	label     string
	degraded  bool
	createdAt time.Time
}

func newRecord(id, url string, result model.AnalysisResult, page *model.PageRecord, now time.Time) (*record, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal result")
	}
	rec := &record{
		id:        id,
		url:       url,
		result:    resultJSON,
		degraded:  analyzer.IsDegraded(result),
		createdAt: now,
	}
	if page != nil {
		if rec.page, err = json.Marshal(page); err != nil {
			return nil, eris.Wrap(err, "store: marshal page")
		}
	}
	if label, ok := result["overall_score"].(string); ok {
		rec.label = label
		if v, ok := analyzer.ParseScore(label); ok {
			rec.score = &v
		}
	}
	return rec, nil
}

func (r *record) analysis() (*model.Analysis, error) {
	a := &model.Analysis{
		ID:        r.id,
		URL:       r.url,
		CreatedAt: r.createdAt.UTC(),
	}
	if err := json.Unmarshal(r.result, &a.Result); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal result %s", r.id)
	}
	if len(r.page) > 0 {
		a.Page = &model.PageRecord{}
		if err := json.Unmarshal(r.page, a.Page); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal page %s", r.id)
		}
	}
	return a, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return min(limit, MaxRecentLimit)
}
