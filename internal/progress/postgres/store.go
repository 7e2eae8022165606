// Package postgres provides a PostgreSQL-backed implementation of the
// progress [progress.Store].
//
// The progress_records table is append-only by construction: the store
// exposes no update or delete operations, matching the core's contract that
// a user's log only ever grows.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/speakbright/speakbright/internal/progress"
	"github.com/speakbright/speakbright/pkg/types"
)

// Compile-time interface check.
var _ progress.Store = (*Store)(nil)

const ddlProgressRecords = `
CREATE TABLE IF NOT EXISTS progress_records (
    id             BIGSERIAL    PRIMARY KEY,
    user_id        TEXT         NOT NULL,
    timestamp      TIMESTAMPTZ  NOT NULL DEFAULT now(),
    word           TEXT         NOT NULL,
    overall_score  INT          NOT NULL,
    confidences    JSONB        NOT NULL DEFAULT '{}',
    improved       TEXT[]       NOT NULL DEFAULT '{}',
    needs_practice TEXT[]       NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_progress_records_user_id
    ON progress_records (user_id);

CREATE INDEX IF NOT EXISTS idx_progress_records_user_timestamp
    ON progress_records (user_id, timestamp);
`

// Store persists progress logs in PostgreSQL via a shared [pgxpool.Pool].
// All methods are safe for concurrent use; appends for the same user are
// serialized by the database.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the database at dsn and runs
// [Migrate] to ensure the progress_records table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("progress store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("progress store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("progress store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("progress store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Migrate creates the progress_records table and its indexes if absent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlProgressRecords); err != nil {
		return fmt.Errorf("progress store: apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Append implements [progress.Store].
func (s *Store) Append(ctx context.Context, userID string, record types.ProgressRecord) error {
	const q = `
		INSERT INTO progress_records
		    (user_id, timestamp, word, overall_score, confidences, improved, needs_practice)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	confidences, err := json.Marshal(record.Confidences)
	if err != nil {
		return fmt.Errorf("progress store: marshal confidences: %w", err)
	}

	_, err = s.pool.Exec(ctx, q,
		userID,
		record.Timestamp,
		record.Word,
		record.OverallScore,
		confidences,
		record.Improved,
		record.NeedsPractice,
	)
	if err != nil {
		return fmt.Errorf("progress store: %w: append: %w", progress.ErrHistoryUnavailable, err)
	}
	return nil
}

// ReadHistory implements [progress.Store]. Records are returned in append
// order (oldest first).
func (s *Store) ReadHistory(ctx context.Context, userID string) ([]types.ProgressRecord, error) {
	const q = `
		SELECT timestamp, word, overall_score, confidences, improved, needs_practice
		FROM   progress_records
		WHERE  user_id = $1
		ORDER  BY timestamp, id`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("progress store: %w: read history: %w", progress.ErrHistoryUnavailable, err)
	}
	return collectRecords(rows)
}

// collectRecords scans pgx rows into progress records.
func collectRecords(rows pgx.Rows) ([]types.ProgressRecord, error) {
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.ProgressRecord, error) {
		var (
			rec         types.ProgressRecord
			confidences []byte
		)
		if err := row.Scan(
			&rec.Timestamp,
			&rec.Word,
			&rec.OverallScore,
			&confidences,
			&rec.Improved,
			&rec.NeedsPractice,
		); err != nil {
			return types.ProgressRecord{}, err
		}
		if err := json.Unmarshal(confidences, &rec.Confidences); err != nil {
			return types.ProgressRecord{}, err
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("progress store: %w: scan rows: %w", progress.ErrHistoryUnavailable, err)
	}
	return records, nil
}
