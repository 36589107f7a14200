package jobs

import (
	"context"
	"fmt"

	"github.com/athlab/vigil/internal/flags"
	"github.com/athlab/vigil/pkg/logger"
)

// FlagRunJob runs the full flag pipeline every morning so the flagged
// athletes report is ready before training staff arrive.
type FlagRunJob struct {
	runner *flags.Runner
	logger *logger.Logger
}

// NewFlagRunJob creates a new flag run job.
func NewFlagRunJob(runner *flags.Runner, log *logger.Logger) *FlagRunJob {
	return &FlagRunJob{
		runner: runner,
		logger: log,
	}
}

// Name returns the job name.
func (j *FlagRunJob) Name() string {
	return "flag_run"
}

// Schedule returns the cron schedule (every day at 6 AM, with seconds).
func (j *FlagRunJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run executes the flag pipeline.
func (j *FlagRunJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled flag run")

	run, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("flag run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"events":   run.EventsEvaluated,
		"flagged":  run.Count(),
		"athletes": run.AthleteCount(),
		"issues":   len(run.Issues),
	}).Info("Scheduled flag run completed")

	return nil
}
