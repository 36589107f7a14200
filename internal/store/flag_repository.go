package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/athlab/vigil/internal/contracts"
)

// FlagRepository implements contracts.FlagRepository on Postgres.
type FlagRepository struct {
	pool *pgxpool.Pool
}

// NewFlagRepository creates a new flag repository.
func NewFlagRepository(pool *pgxpool.Pool) *FlagRepository {
	return &FlagRepository{pool: pool}
}

// SaveRun stores a run and its records atomically.
func (r *FlagRepository) SaveRun(ctx context.Context, run *contracts.FlagRun) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	issuesJSON, err := json.Marshal(run.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO flags.flag_runs
			(run_date, config_hash, events_evaluated, events_skipped, issues, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		run.RunDate, run.ConfigHash, run.EventsEvaluated, run.EventsSkipped,
		issuesJSON, run.CreatedAt,
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert flag run: %w", err)
	}

	for i := range run.Records {
		rec := &run.Records[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO flags.flagged_records
				(run_id, playername, team, flag_reason, metric_value, last_test_date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			runID, rec.PlayerName, rec.Team, rec.FlagReason, rec.MetricValue, rec.LastTestDate,
		)
		if err != nil {
			return fmt.Errorf("insert flagged record for %s: %w", rec.PlayerName, err)
		}
	}

	return tx.Commit(ctx)
}

// GetRunByDate returns the run for a given run date (calendar day).
func (r *FlagRepository) GetRunByDate(ctx context.Context, date time.Time) (*contracts.FlagRun, error) {
	query := `
		SELECT id, run_date, config_hash, events_evaluated, events_skipped, issues, created_at
		FROM flags.flag_runs
		WHERE run_date::date = $1::date
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.getRun(ctx, query, date)
}

// GetLatestRun returns the most recent run, or nil when none exists.
func (r *FlagRepository) GetLatestRun(ctx context.Context) (*contracts.FlagRun, error) {
	query := `
		SELECT id, run_date, config_hash, events_evaluated, events_skipped, issues, created_at
		FROM flags.flag_runs
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.getRun(ctx, query)
}

// GetRecordsByAthlete returns all stored records for an athlete,
// newest first.
func (r *FlagRepository) GetRecordsByAthlete(ctx context.Context, playerName string) ([]contracts.FlaggedRecord, error) {
	query := `
		SELECT playername, team, flag_reason, metric_value, last_test_date
		FROM flags.flagged_records
		WHERE playername = $1
		ORDER BY last_test_date DESC, flag_reason ASC
	`

	rows, err := r.pool.Query(ctx, query, playerName)
	if err != nil {
		return nil, fmt.Errorf("query athlete records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// getRun loads a run row plus its records.
func (r *FlagRepository) getRun(ctx context.Context, query string, args ...interface{}) (*contracts.FlagRun, error) {
	var (
		run        contracts.FlagRun
		runID      int64
		issuesJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&runID, &run.RunDate, &run.ConfigHash,
		&run.EventsEvaluated, &run.EventsSkipped, &issuesJSON, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query flag run: %w", err)
	}

	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &run.Issues); err != nil {
			return nil, fmt.Errorf("unmarshal issues: %w", err)
		}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT playername, team, flag_reason, metric_value, last_test_date
		FROM flags.flagged_records
		WHERE run_id = $1
		ORDER BY playername ASC, last_test_date ASC, flag_reason ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query flagged records: %w", err)
	}
	defer rows.Close()

	run.Records, err = scanRecords(rows)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// scanRecords reads FlaggedRecord rows.
func scanRecords(rows pgx.Rows) ([]contracts.FlaggedRecord, error) {
	var records []contracts.FlaggedRecord
	for rows.Next() {
		var rec contracts.FlaggedRecord
		if err := rows.Scan(
			&rec.PlayerName, &rec.Team, &rec.FlagReason,
			&rec.MetricValue, &rec.LastTestDate,
		); err != nil {
			return nil, fmt.Errorf("scan flagged record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
