package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/external/forcedecks"
	"github.com/athlab/vigil/pkg/logger"
)

// IngestJob pulls recent CMJ tests from the vendor API into the store
// ahead of the morning flag run.
type IngestJob struct {
	client *forcedecks.Client
	events contracts.EventRepository
	logger *logger.Logger
}

// NewIngestJob creates a new vendor ingest job.
func NewIngestJob(client *forcedecks.Client, events contracts.EventRepository, log *logger.Logger) *IngestJob {
	return &IngestJob{
		client: client,
		events: events,
		logger: log,
	}
}

// Name returns the job name.
func (j *IngestJob) Name() string {
	return "forcedecks_ingest"
}

// Schedule returns the cron schedule (every day at 5:30 AM, with seconds).
func (j *IngestJob) Schedule() string {
	return "0 30 5 * * *"
}

// Run fetches the last 7 days of tests and upserts them. The window
// overlaps previous runs; the upsert makes re-ingestion safe.
func (j *IngestJob) Run(ctx context.Context) error {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	j.logger.WithFields(map[string]interface{}{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}).Info("Starting scheduled vendor ingest")

	tests, err := j.client.ListTests(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list vendor tests: %w", err)
	}

	if err := j.events.SaveBatch(ctx, tests); err != nil {
		return fmt.Errorf("save ingested tests: %w", err)
	}

	j.logger.WithField("tests", len(tests)).Info("Scheduled vendor ingest completed")
	return nil
}
