package contracts

import (
	"fmt"
	"time"
)

// FlaggedRecord is one triggered condition for one test event.
// An event can produce zero or more records, one per condition.
type FlaggedRecord struct {
	PlayerName   string    `json:"playername"`
	Team         string    `json:"team"`
	FlagReason   string    `json:"flag_reason"`
	MetricValue  float64   `json:"metric_value"`
	LastTestDate time.Time `json:"last_test_date"`
}

// SortKey returns a deterministic ordering key so repeated runs over
// the same input emit identical output.
func (r *FlaggedRecord) SortKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		r.PlayerName, r.Team, r.LastTestDate.Format("2006-01-02"), r.FlagReason)
}

// ValidationIssue records an event that could not be evaluated against
// one or more rules. Issues are reported with the run, never dropped.
type ValidationIssue struct {
	PlayerName string    `json:"playername,omitempty"`
	Team       string    `json:"team,omitempty"`
	TestDate   time.Time `json:"test_date,omitempty"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
}

// Validation issue codes.
const (
	IssueIncompleteEvent   = "incomplete_event"
	IssueNoBaselineHistory = "no_baseline_history"
	IssueZeroBaseline      = "zero_baseline"
	IssueZeroTeamAverage   = "zero_team_average"
	IssueParseError        = "parse_error"
)

// FlagRun is the result of one evaluator pass over the input set,
// including the audit trail (threshold config hash) and any issues.
type FlagRun struct {
	RunDate         time.Time         `json:"run_date"`
	ConfigHash      string            `json:"config_hash"`
	EventsEvaluated int               `json:"events_evaluated"`
	EventsSkipped   int               `json:"events_skipped"`
	Records         []FlaggedRecord   `json:"records"`
	Issues          []ValidationIssue `json:"issues,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Count returns the number of flagged records in the run.
func (fr *FlagRun) Count() int {
	return len(fr.Records)
}

// AthleteCount returns the number of distinct athletes flagged.
func (fr *FlagRun) AthleteCount() int {
	seen := make(map[string]struct{}, len(fr.Records))
	for _, r := range fr.Records {
		seen[r.PlayerName] = struct{}{}
	}
	return len(seen)
}
