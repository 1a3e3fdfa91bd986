package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_runs (
    run_id      UUID PRIMARY KEY,
    data_dir    TEXT NOT NULL,
    documents   INTEGER NOT NULL,
    queries     INTEGER NOT NULL,
    elapsed_ms  BIGINT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS search_queries (
    run_id       UUID NOT NULL REFERENCES search_runs(run_id) ON DELETE CASCADE,
    query_index  INTEGER NOT NULL,
    query        TEXT NOT NULL,
    match_count  INTEGER NOT NULL,
    PRIMARY KEY (run_id, query_index)
);
CREATE TABLE IF NOT EXISTS search_matches (
    run_id       UUID NOT NULL,
    query_index  INTEGER NOT NULL,
    doc_id       INTEGER NOT NULL,
    title        TEXT NOT NULL,
    PRIMARY KEY (run_id, query_index, doc_id),
    FOREIGN KEY (run_id, query_index) REFERENCES search_queries(run_id, query_index) ON DELETE CASCADE
);`

// PGStore persists run reports in PostgreSQL.
type PGStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewPGStore(db *postgres.Client) *PGStore {
	return &PGStore{
		db:     db,
		logger: slog.Default().With("component", "report-store"),
	}
}

// EnsureSchema creates the report tables if they do not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating report schema: %w", err)
	}
	return nil
}

func (s *PGStore) Name() string { return "postgres" }

// Write stores the run, its queries and every match in one transaction.
func (s *PGStore) Write(ctx context.Context, r *Report) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO search_runs (run_id, data_dir, documents, queries, elapsed_ms, started_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.RunID, r.DataDir, r.Documents, len(r.Results), r.Elapsed.Milliseconds(), r.StartedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		queryStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO search_queries (run_id, query_index, query, match_count) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("preparing query insert: %w", err)
		}
		defer queryStmt.Close()
		matchStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO search_matches (run_id, query_index, doc_id, title) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("preparing match insert: %w", err)
		}
		defer matchStmt.Close()

		for qi, qr := range r.Results {
			if _, err := queryStmt.ExecContext(ctx, r.RunID, qi, qr.Query, len(qr.DocIDs)); err != nil {
				return fmt.Errorf("inserting query %d: %w", qi, err)
			}
			for i, id := range qr.DocIDs {
				if _, err := matchStmt.ExecContext(ctx, r.RunID, qi, id, qr.Titles[i]); err != nil {
					return fmt.Errorf("inserting match %d of query %d: %w", id, qi, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("run report saved", "run_id", r.RunID, "queries", len(r.Results))
	return nil
}

// MatchCount returns how many documents query queryIndex of run runID
// matched, or sql.ErrNoRows wrapped if the query is unknown.
func (s *PGStore) MatchCount(ctx context.Context, runID string, queryIndex int) (int, error) {
	var n int
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT match_count FROM search_queries WHERE run_id = $1 AND query_index = $2`,
		runID, queryIndex,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reading match count: %w", err)
	}
	return n, nil
}
