package quality

import (
	"fmt"
	"time"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/pkg/logger"
)

// Validator checks stored test events for completeness and produces
// coverage snapshots. Problems are reported, never silently dropped.
type Validator struct {
	logger *logger.Logger
}

// NewValidator creates a new validator.
func NewValidator(log *logger.Logger) *Validator {
	return &Validator{logger: log}
}

// Validate returns one issue per incomplete event: missing identity
// fields or a non-positive metric value.
func (v *Validator) Validate(events []contracts.TestEvent) []contracts.ValidationIssue {
	var issues []contracts.ValidationIssue

	for i := range events {
		e := &events[i]

		if e.PlayerName == "" || e.Team == "" || e.TestDate.IsZero() {
			issues = append(issues, contracts.ValidationIssue{
				PlayerName: e.PlayerName,
				Team:       e.Team,
				TestDate:   e.TestDate,
				Code:       contracts.IssueIncompleteEvent,
				Message:    "missing playername, team, or test_date",
			})
			continue
		}

		for _, m := range contracts.Metrics {
			if e.MetricValue(m) <= 0 {
				issues = append(issues, contracts.ValidationIssue{
					PlayerName: e.PlayerName,
					Team:       e.Team,
					TestDate:   e.TestDate,
					Code:       contracts.IssueIncompleteEvent,
					Message:    fmt.Sprintf("missing %s value", m.Label()),
				})
			}
		}
	}

	if len(issues) > 0 {
		v.logger.WithField("issues", len(issues)).Warn("Event validation found problems")
	}

	return issues
}

// Coverage summarizes the stored events: totals, date range, and the
// fraction of events with a usable value per metric.
func (v *Validator) Coverage(events []contracts.TestEvent) *contracts.CoverageSnapshot {
	snapshot := &contracts.CoverageSnapshot{
		GeneratedAt: time.Now(),
		TotalEvents: len(events),
		Coverage:    make(map[contracts.Metric]float64),
	}

	if len(events) == 0 {
		return snapshot
	}

	athletes := make(map[string]struct{})
	teams := make(map[string]struct{})
	present := make(map[contracts.Metric]int)

	for i := range events {
		e := &events[i]

		if e.PlayerName != "" {
			athletes[e.PlayerName] = struct{}{}
		}
		if e.Team != "" {
			teams[e.Team] = struct{}{}
		}

		if !e.TestDate.IsZero() {
			if snapshot.FirstTestDate.IsZero() || e.TestDate.Before(snapshot.FirstTestDate) {
				snapshot.FirstTestDate = e.TestDate
			}
			if e.TestDate.After(snapshot.LastTestDate) {
				snapshot.LastTestDate = e.TestDate
			}
		}

		for _, m := range contracts.Metrics {
			if e.MetricValue(m) > 0 {
				present[m]++
			}
		}
	}

	snapshot.Athletes = len(athletes)
	snapshot.Teams = len(teams)

	total := float64(len(events))
	var sum float64
	for _, m := range contracts.Metrics {
		cov := float64(present[m]) / total
		snapshot.Coverage[m] = cov
		sum += cov
	}
	snapshot.QualityScore = sum / float64(len(contracts.Metrics))

	return snapshot
}
