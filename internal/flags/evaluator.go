package flags

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/athlab/vigil/internal/baseline"
	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/ruleconfig"
	"github.com/athlab/vigil/pkg/logger"
)

// Evaluator runs the four fatigue conditions over a set of test events
// and produces a FlagRun. The evaluation is a pure function of the
// input set and the rule config: re-running over the same input yields
// identical records.
type Evaluator struct {
	calc    *baseline.Calculator
	rules   *ruleconfig.Config
	reasons Reasons
	logger  *logger.Logger
}

// NewEvaluator creates a new evaluator for a rule set.
func NewEvaluator(calc *baseline.Calculator, rules *ruleconfig.Config, log *logger.Logger) *Evaluator {
	return &Evaluator{
		calc:    calc,
		rules:   rules,
		reasons: NewReasons(rules),
		logger:  log,
	}
}

// Evaluate checks every event against the four conditions. Baselines
// are computed from events strictly before each evaluated event, so no
// event contributes to its own baseline. Events that cannot be
// evaluated are reported as validation issues, not dropped silently.
func (ev *Evaluator) Evaluate(events []contracts.TestEvent) (*contracts.FlagRun, error) {
	hash, err := ruleconfig.Hash(ev.rules)
	if err != nil {
		return nil, fmt.Errorf("hash rule config: %w", err)
	}

	run := &contracts.FlagRun{
		RunDate:    time.Now(),
		ConfigHash: hash,
		CreatedAt:  time.Now(),
	}

	// Deterministic evaluation order
	ordered := make([]contracts.TestEvent, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].TestDate.Equal(ordered[j].TestDate) {
			return ordered[i].TestDate.Before(ordered[j].TestDate)
		}
		return ordered[i].PlayerName < ordered[j].PlayerName
	})

	for i := range ordered {
		e := &ordered[i]

		if e.PlayerName == "" || e.Team == "" || e.TestDate.IsZero() {
			run.EventsSkipped++
			run.Issues = append(run.Issues, contracts.ValidationIssue{
				PlayerName: e.PlayerName,
				Team:       e.Team,
				TestDate:   e.TestDate,
				Code:       contracts.IssueIncompleteEvent,
				Message:    "missing playername, team, or test_date",
			})
			continue
		}

		ev.evaluateEvent(events, e, run)
		run.EventsEvaluated++
	}

	sort.Slice(run.Records, func(i, j int) bool {
		return run.Records[i].SortKey() < run.Records[j].SortKey()
	})

	ev.logger.WithFields(map[string]interface{}{
		"events":    run.EventsEvaluated,
		"skipped":   run.EventsSkipped,
		"flagged":   run.Count(),
		"athletes":  run.AthleteCount(),
		"issues":    len(run.Issues),
		"rule_hash": run.ConfigHash[:12],
	}).Info("Flag evaluation completed")

	return run, nil
}

// evaluateEvent applies the four conditions to a single event.
func (ev *Evaluator) evaluateEvent(all []contracts.TestEvent, e *contracts.TestEvent, run *contracts.FlagRun) {
	ab := ev.calc.ForAthlete(all, e.PlayerName, e.TestDate)

	if ab.History < ev.rules.Baselines.MinHistory {
		run.Issues = append(run.Issues, contracts.ValidationIssue{
			PlayerName: e.PlayerName,
			Team:       e.Team,
			TestDate:   e.TestDate,
			Code:       contracts.IssueNoBaselineHistory,
			Message: fmt.Sprintf("%d prior tests, %d required for baseline rules",
				ab.History, ev.rules.Baselines.MinHistory),
		})
	} else {
		ev.checkBaselineRule(e, ab, contracts.MetricMRSI, ev.rules.Rules.MRSIBaselineRatio, ev.reasons.MRSIBaseline, run)
		ev.checkBaselineRule(e, ab, contracts.MetricJumpHeight, ev.rules.Rules.JumpHeightBaselineRatio, ev.reasons.JumpHeight, run)
		ev.checkBaselineRule(e, ab, contracts.MetricPropulsiveNetImpulse, ev.rules.Rules.PropulsiveNetImpulseBaselineRatio, ev.reasons.PropulsiveNetImpulse, run)
	}

	ev.checkTeamRule(all, e, run)
}

// checkBaselineRule flags when the current value has dropped to or
// below ratio x the athlete's median baseline.
func (ev *Evaluator) checkBaselineRule(
	e *contracts.TestEvent,
	ab *contracts.AthleteBaseline,
	metric contracts.Metric,
	ratio float64,
	reason string,
	run *contracts.FlagRun,
) {
	value := e.MetricValue(metric)
	if value <= 0 {
		run.Issues = append(run.Issues, contracts.ValidationIssue{
			PlayerName: e.PlayerName,
			Team:       e.Team,
			TestDate:   e.TestDate,
			Code:       contracts.IssueIncompleteEvent,
			Message:    fmt.Sprintf("missing %s value", metric.Label()),
		})
		return
	}

	median, ok := ab.Median(metric)
	if !ok || median <= 0 {
		run.Issues = append(run.Issues, contracts.ValidationIssue{
			PlayerName: e.PlayerName,
			Team:       e.Team,
			TestDate:   e.TestDate,
			Code:       contracts.IssueZeroBaseline,
			Message:    fmt.Sprintf("no usable %s baseline in window", metric.Label()),
		})
		return
	}

	if value <= ratio*median {
		run.Records = append(run.Records, contracts.FlaggedRecord{
			PlayerName:   e.PlayerName,
			Team:         e.Team,
			FlagReason:   reason,
			MetricValue:  value,
			LastTestDate: e.TestDate,
		})
	}
}

// checkTeamRule flags when the event's mRSI deviates from the team
// average (computed over the same strict window) by the configured
// fraction or more, in either direction.
func (ev *Evaluator) checkTeamRule(all []contracts.TestEvent, e *contracts.TestEvent, run *contracts.FlagRun) {
	if e.MRSI <= 0 {
		// Already reported: as an incomplete event by the mRSI baseline
		// rule, or by the no-history issue when that rule never ran.
		return
	}

	tb := ev.calc.ForTeam(all, e.Team, e.TestDate)
	if tb.SampleSize == 0 || tb.AvgMRSI <= 0 {
		run.Issues = append(run.Issues, contracts.ValidationIssue{
			PlayerName: e.PlayerName,
			Team:       e.Team,
			TestDate:   e.TestDate,
			Code:       contracts.IssueZeroTeamAverage,
			Message:    fmt.Sprintf("no usable team average for %s in window", e.Team),
		})
		return
	}

	deviation := math.Abs(e.MRSI-tb.AvgMRSI) / tb.AvgMRSI
	if deviation >= ev.rules.Rules.MRSITeamDeviation {
		run.Records = append(run.Records, contracts.FlaggedRecord{
			PlayerName:   e.PlayerName,
			Team:         e.Team,
			FlagReason:   ev.reasons.MRSITeam,
			MetricValue:  e.MRSI,
			LastTestDate: e.TestDate,
		})
	}
}
