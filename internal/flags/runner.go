package flags

import (
	"context"
	"fmt"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/export"
	"github.com/athlab/vigil/pkg/logger"
)

// Runner wires the full flag pipeline: load events, evaluate, persist
// the run, and write the flagged-athletes CSV. Used by the CLI run
// command and the scheduled job.
type Runner struct {
	events     contracts.EventRepository
	flagRuns   contracts.FlagRepository
	evaluator  *Evaluator
	outputPath string
	logger     *logger.Logger
}

// NewRunner creates a new pipeline runner. flagRuns may be nil to skip
// persistence; outputPath may be empty to skip the CSV.
func NewRunner(
	events contracts.EventRepository,
	flagRuns contracts.FlagRepository,
	evaluator *Evaluator,
	outputPath string,
	log *logger.Logger,
) *Runner {
	return &Runner{
		events:     events,
		flagRuns:   flagRuns,
		evaluator:  evaluator,
		outputPath: outputPath,
		logger:     log,
	}
}

// Run executes one full pipeline pass.
func (r *Runner) Run(ctx context.Context) (*contracts.FlagRun, error) {
	events, err := r.events.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test events: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no test events stored; import or ingest data first")
	}

	run, err := r.evaluator.Evaluate(events)
	if err != nil {
		return nil, fmt.Errorf("evaluate flags: %w", err)
	}

	if r.flagRuns != nil {
		if err := r.flagRuns.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("persist flag run: %w", err)
		}
	}

	if r.outputPath != "" {
		if err := export.WriteFile(r.outputPath, run.Records); err != nil {
			return nil, fmt.Errorf("write flagged athletes CSV: %w", err)
		}
		r.logger.WithFields(map[string]interface{}{
			"path":    r.outputPath,
			"records": run.Count(),
		}).Info("Wrote flagged athletes CSV")
	}

	return run, nil
}
