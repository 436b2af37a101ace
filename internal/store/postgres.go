package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/db"
	"github.com/sells-group/site-analyzer/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// queries holds the statements shared by the store and its tests.
var queries = map[string]string{
	"insert_analysis": `INSERT INTO analyses (id, url, analysis_data, page_data, overall_score, score_label, degraded, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_analysis":    `SELECT id, url, analysis_data, page_data, created_at FROM analyses WHERE id = $1`,
	"list_recent":     `SELECT id, url, score_label, created_at FROM analyses ORDER BY created_at DESC, id LIMIT $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	analysis_data JSONB NOT NULL,
	page_data     JSONB,
	overall_score DOUBLE PRECISION,
	score_label   TEXT NOT NULL DEFAULT '',
	degraded      BOOLEAN NOT NULL DEFAULT false,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, url string, result model.AnalysisResult, page *model.PageRecord) (*model.Analysis, error) {
	rec, err := newRecord(uuid.New().String(), url, result, page, s.now().UTC())
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, queries["insert_analysis"],
		rec.id, rec.url, rec.result, rec.page, rec.score, rec.label, rec.degraded, rec.createdAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
	}
	return rec.analysis()
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var rec record
	err := s.pool.QueryRow(ctx, queries["get_analysis"], id).
		Scan(&rec.id, &rec.url, &rec.result, &rec.page, &rec.createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get analysis %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	return rec.analysis()
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]model.AnalysisSummary, error) {
	rows, err := s.pool.Query(ctx, queries["list_recent"], clampLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recent")
	}
	defer rows.Close()

	out := []model.AnalysisSummary{}
	for rows.Next() {
		var a model.AnalysisSummary
		if err := rows.Scan(&a.ID, &a.URL, &a.OverallScore, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list recent iterate")
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	err := s.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(DISTINCT url),
			COUNT(*) FILTER (WHERE degraded),
			COALESCE(AVG(overall_score), 0)
		 FROM analyses`,
		s.now().UTC().Add(-24*time.Hour),
	).Scan(&st.TotalAnalyses, &st.Last24h, &st.UniqueURLs, &st.DegradedAnalyses, &st.AvgOverallScore)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}
	return &st, nil
}
