package contracts

import (
	"context"
	"time"
)

// EventRepository provides access to stored test events.
type EventRepository interface {
	// GetAll returns every stored event ordered by test date.
	GetAll(ctx context.Context) ([]TestEvent, error)

	// GetByTeam returns a team's events ordered by test date.
	GetByTeam(ctx context.Context, team string) ([]TestEvent, error)

	// GetAthleteHistoryBefore returns an athlete's events strictly
	// before the given date, oldest first.
	GetAthleteHistoryBefore(ctx context.Context, playerName string, before time.Time) ([]TestEvent, error)

	// GetTeamWindowBefore returns a team's events strictly before the
	// given date, oldest first.
	GetTeamWindowBefore(ctx context.Context, team string, before time.Time) ([]TestEvent, error)

	// CountByTeam returns the number of stored events per team.
	CountByTeam(ctx context.Context) (map[string]int, error)

	// LatestTestDate returns the most recent test date across all
	// events, or the zero time when the store is empty.
	LatestTestDate(ctx context.Context) (time.Time, error)

	// SaveBatch upserts events keyed by (playername, test_date).
	SaveBatch(ctx context.Context, events []TestEvent) error
}

// FlagRepository persists flag runs and their records.
type FlagRepository interface {
	// SaveRun stores a run and its records atomically.
	SaveRun(ctx context.Context, run *FlagRun) error

	// GetRunByDate returns the run for a given run date.
	GetRunByDate(ctx context.Context, date time.Time) (*FlagRun, error)

	// GetLatestRun returns the most recent run.
	GetLatestRun(ctx context.Context) (*FlagRun, error)

	// GetRecordsByAthlete returns all stored records for an athlete,
	// newest first.
	GetRecordsByAthlete(ctx context.Context, playerName string) ([]FlaggedRecord, error)
}
