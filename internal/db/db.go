// Package db provides PostgreSQL storage for the enrichment run audit log.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db != nil && db.pool != nil {
		db.pool.Close()
	}
}

// Run is one enrichment run audit record. The audit log is append only and
// is never read back by the enrichment flow itself.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	RecordID    string     `json:"record_id"`
	LinkedInURL string     `json:"linkedin_url"`
	Status      string     `json:"status"`
	ToUpdate    *bool      `json:"to_update,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Description string     `json:"description,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StartRun inserts a new run in the running state
func (db *DB) StartRun(ctx context.Context, runID uuid.UUID, recordID, linkedinURL string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO enrichment_runs (id, record_id, linkedin_url, status)
		 VALUES ($1, $2, $3, 'running')`,
		runID, recordID, linkedinURL,
	)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// CompleteRun records the run outcome. toUpdate is nil when the flow exited
// before the comparison step.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, toUpdate *bool, reason, description, errText string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE enrichment_runs
		 SET status = $1, to_update = $2, reason = $3, description = $4, error = $5, completed_at = NOW()
		 WHERE id = $6`,
		status, toUpdate, reason, description, errText, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil when it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, record_id, linkedin_url, status, to_update, COALESCE(reason, ''),
		        COALESCE(description, ''), COALESCE(error, ''), created_at, completed_at
		 FROM enrichment_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.RecordID, &run.LinkedInURL, &run.Status, &run.ToUpdate,
		&run.Reason, &run.Description, &run.Error, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	RecordID string
	Status   string
	Limit    int
}

// ListRuns retrieves recent runs with optional filters
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, record_id, linkedin_url, status, to_update, COALESCE(reason, ''),
		       COALESCE(description, ''), COALESCE(error, ''), created_at, completed_at
		FROM enrichment_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.RecordID != "" {
		query += fmt.Sprintf(" AND record_id = $%d", argNum)
		args = append(args, filters.RecordID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.RecordID, &run.LinkedInURL, &run.Status, &run.ToUpdate,
			&run.Reason, &run.Description, &run.Error, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
