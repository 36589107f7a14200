package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/athlab/vigil/internal/contracts"
)

// EventRepository implements contracts.EventRepository on Postgres.
// Test event storage is accessed only through this repository.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `playername, team, test_date, mrsi, jump_height_m, propulsive_net_impulse_ns`

// GetAll returns every stored event ordered by test date.
func (r *EventRepository) GetAll(ctx context.Context) ([]contracts.TestEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM data.test_events
		ORDER BY test_date ASC, playername ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query test events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByTeam returns a team's events ordered by test date.
func (r *EventRepository) GetByTeam(ctx context.Context, team string) ([]contracts.TestEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM data.test_events
		WHERE team = $1
		ORDER BY test_date ASC, playername ASC
	`

	rows, err := r.pool.Query(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("query team events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetAthleteHistoryBefore returns an athlete's events strictly before
// the given date, oldest first.
func (r *EventRepository) GetAthleteHistoryBefore(ctx context.Context, playerName string, before time.Time) ([]contracts.TestEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM data.test_events
		WHERE playername = $1 AND test_date < $2
		ORDER BY test_date ASC
	`

	rows, err := r.pool.Query(ctx, query, playerName, before)
	if err != nil {
		return nil, fmt.Errorf("query athlete history: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetTeamWindowBefore returns a team's events strictly before the given
// date, oldest first.
func (r *EventRepository) GetTeamWindowBefore(ctx context.Context, team string, before time.Time) ([]contracts.TestEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM data.test_events
		WHERE team = $1 AND test_date < $2
		ORDER BY test_date ASC, playername ASC
	`

	rows, err := r.pool.Query(ctx, query, team, before)
	if err != nil {
		return nil, fmt.Errorf("query team window: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountByTeam returns the number of stored events per team.
func (r *EventRepository) CountByTeam(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT team, COUNT(*)
		FROM data.test_events
		GROUP BY team
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query team counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var team string
		var n int
		if err := rows.Scan(&team, &n); err != nil {
			return nil, fmt.Errorf("scan team count: %w", err)
		}
		counts[team] = n
	}
	return counts, rows.Err()
}

// LatestTestDate returns the most recent test date, or the zero time
// when the store is empty.
func (r *EventRepository) LatestTestDate(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(test_date) FROM data.test_events`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query).Scan(&latest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("query latest test date: %w", err)
	}

	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// SaveBatch upserts events keyed by (playername, test_date).
func (r *EventRepository) SaveBatch(ctx context.Context, events []contracts.TestEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.test_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (playername, test_date) DO UPDATE SET
			team = EXCLUDED.team,
			mrsi = EXCLUDED.mrsi,
			jump_height_m = EXCLUDED.jump_height_m,
			propulsive_net_impulse_ns = EXCLUDED.propulsive_net_impulse_ns
	`

	batch := &pgx.Batch{}
	for i := range events {
		e := &events[i]
		batch.Queue(query,
			e.PlayerName, e.Team, e.TestDate,
			e.MRSI, e.JumpHeightM, e.PropulsiveNetImpulseNs,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert event %s/%s: %w",
				events[i].PlayerName, events[i].TestDate.Format("2006-01-02"), err)
		}
	}

	return nil
}

// scanEvents reads TestEvent rows.
func scanEvents(rows pgx.Rows) ([]contracts.TestEvent, error) {
	var events []contracts.TestEvent
	for rows.Next() {
		var e contracts.TestEvent
		if err := rows.Scan(
			&e.PlayerName, &e.Team, &e.TestDate,
			&e.MRSI, &e.JumpHeightM, &e.PropulsiveNetImpulseNs,
		); err != nil {
			return nil, fmt.Errorf("scan test event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
