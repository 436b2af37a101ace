package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/site-analyzer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	analysis_data TEXT NOT NULL,
	page_data     TEXT,
	overall_score REAL,
	score_label   TEXT NOT NULL DEFAULT '',
	degraded      INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, url string, result model.AnalysisResult, page *model.PageRecord) (*model.Analysis, error) {
	rec, err := newRecord(uuid.New().String(), url, result, page, s.now().UTC())
	if err != nil {
		return nil, err
	}

	var pageData sql.NullString
	if rec.page != nil {
		pageData = sql.NullString{String: string(rec.page), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, url, analysis_data, page_data, overall_score, score_label, degraded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.id, rec.url, string(rec.result), pageData, rec.score, rec.label, rec.degraded, rec.createdAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
	}
	return rec.analysis()
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var (
		rec      record
		result   string
		pageData sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, analysis_data, page_data, created_at FROM analyses WHERE id = ?`,
		id,
	).Scan(&rec.id, &rec.url, &result, &pageData, &rec.createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get analysis %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}

	rec.result = []byte(result)
	if pageData.Valid {
		rec.page = []byte(pageData.String)
	}
	return rec.analysis()
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]model.AnalysisSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, score_label, created_at FROM analyses ORDER BY created_at DESC, id LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recent")
	}
	defer func() { _ = rows.Close() }()

	out := []model.AnalysisSummary{}
	for rows.Next() {
		var a model.AnalysisSummary
		if err := rows.Scan(&a.ID, &a.URL, &a.OverallScore, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list recent iterate")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	cutoff := s.now().UTC().Add(-24 * time.Hour)
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT url),
			COALESCE(SUM(degraded), 0),
			COALESCE(AVG(overall_score), 0.0)
		 FROM analyses`,
		cutoff,
	).Scan(&st.TotalAnalyses, &st.Last24h, &st.UniqueURLs, &st.DegradedAnalyses, &st.AvgOverallScore)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	return &st, nil
}
