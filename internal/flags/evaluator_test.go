package flags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athlab/vigil/internal/baseline"
	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/ruleconfig"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/logger"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	return NewEvaluator(baseline.NewCalculator(log), ruleconfig.Default(), log)
}

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func event(player, team string, date time.Time, mrsi, jh, pni float64) contracts.TestEvent {
	return contracts.TestEvent{
		PlayerName:             player,
		Team:                   team,
		TestDate:               date,
		MRSI:                   mrsi,
		JumpHeightM:            jh,
		PropulsiveNetImpulseNs: pni,
	}
}

// reasonsFor collects the flag reasons emitted for one player and date.
func reasonsFor(run *contracts.FlagRun, player string, date time.Time) []string {
	var out []string
	for _, r := range run.Records {
		if r.PlayerName == player && r.LastTestDate.Equal(date) {
			out = append(out, r.FlagReason)
		}
	}
	return out
}

func TestMRSIBaselineBoundary(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name     string
		mrsi     float64
		wantFlag bool
	}{
		// Baseline median is 0.50, threshold 0.90 x 0.50 = 0.45.
		{"12 percent drop triggers", 0.44, true},
		{"8 percent drop does not", 0.46, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []contracts.TestEvent{
				event("kim_a", "WBB", day(1), 0.50, 0.40, 180),
				event("kim_a", "WBB", day(8), tt.mrsi, 0.40, 180),
			}

			run, err := ev.Evaluate(events)
			require.NoError(t, err)

			reasons := reasonsFor(run, "kim_a", day(8))
			if tt.wantFlag {
				assert.Contains(t, reasons, "mRSI drop >=10% vs baseline")
			} else {
				assert.NotContains(t, reasons, "mRSI drop >=10% vs baseline")
			}
		})
	}
}

func TestMRSITeamBoundary(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name     string
		mrsi     float64
		wantFlag bool
	}{
		// Team window average is 0.40, threshold deviation 15%.
		{"15 percent below triggers", 0.34, true},
		{"12.5 percent below does not", 0.35, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []contracts.TestEvent{
				// Prior window: 0.45 + 0.40 + 0.35 -> team avg 0.40.
				event("lee_b", "WBB", day(1), 0.45, 0.40, 180),
				event("par_c", "WBB", day(2), 0.40, 0.40, 180),
				event("kim_a", "WBB", day(3), 0.35, 0.40, 180),
				event("kim_a", "WBB", day(8), tt.mrsi, 0.40, 180),
			}

			run, err := ev.Evaluate(events)
			require.NoError(t, err)

			reasons := reasonsFor(run, "kim_a", day(8))
			if tt.wantFlag {
				assert.Contains(t, reasons, "mRSI >15% from team average")
			} else {
				assert.NotContains(t, reasons, "mRSI >15% from team average")
			}
		})
	}
}

func TestJumpHeightBoundary(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name     string
		jh       float64
		wantFlag bool
	}{
		// Baseline median 0.40 m, threshold 0.93 x 0.40 = 0.372.
		{"7.5 percent drop triggers", 0.37, true},
		{"6.25 percent drop does not", 0.375, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []contracts.TestEvent{
				event("kim_a", "WBB", day(1), 0.50, 0.40, 180),
				event("kim_a", "WBB", day(8), 0.50, tt.jh, 180),
			}

			run, err := ev.Evaluate(events)
			require.NoError(t, err)

			reasons := reasonsFor(run, "kim_a", day(8))
			if tt.wantFlag {
				assert.Contains(t, reasons, "Jump Height(m) drop >=7% vs baseline")
			} else {
				assert.NotContains(t, reasons, "Jump Height(m) drop >=7% vs baseline")
			}
		})
	}
}

func TestPropulsiveNetImpulseBoundary(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name     string
		pni      float64
		wantFlag bool
	}{
		// Baseline median 200 N.s, threshold 0.93 x 200 = 186.
		{"at threshold triggers", 186, true},
		{"just above does not", 187, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []contracts.TestEvent{
				event("kim_a", "WBB", day(1), 0.50, 0.40, 200),
				event("kim_a", "WBB", day(8), 0.50, 0.40, tt.pni),
			}

			run, err := ev.Evaluate(events)
			require.NoError(t, err)

			reasons := reasonsFor(run, "kim_a", day(8))
			if tt.wantFlag {
				assert.Contains(t, reasons, "Propulsive Net Impulse(N.s) drop >=7% vs baseline")
			} else {
				assert.NotContains(t, reasons, "Propulsive Net Impulse(N.s) drop >=7% vs baseline")
			}
		})
	}
}

func TestOneRecordPerTriggeredCondition(t *testing.T) {
	ev := newTestEvaluator(t)

	// Everything collapses at once: all four conditions fire.
	events := []contracts.TestEvent{
		event("lee_b", "WBB", day(1), 0.50, 0.40, 200),
		event("kim_a", "WBB", day(2), 0.50, 0.40, 200),
		event("kim_a", "WBB", day(8), 0.30, 0.30, 150),
	}

	run, err := ev.Evaluate(events)
	require.NoError(t, err)

	reasons := reasonsFor(run, "kim_a", day(8))
	assert.Len(t, reasons, 4)
	assert.Contains(t, reasons, "mRSI drop >=10% vs baseline")
	assert.Contains(t, reasons, "mRSI >15% from team average")
	assert.Contains(t, reasons, "Jump Height(m) drop >=7% vs baseline")
	assert.Contains(t, reasons, "Propulsive Net Impulse(N.s) drop >=7% vs baseline")
}

func TestNoBaselineHistoryReported(t *testing.T) {
	ev := newTestEvaluator(t)

	events := []contracts.TestEvent{
		event("kim_a", "WBB", day(8), 0.10, 0.10, 10),
	}

	run, err := ev.Evaluate(events)
	require.NoError(t, err)

	assert.Empty(t, run.Records, "first-ever test cannot be flagged")
	require.NotEmpty(t, run.Issues)

	var codes []string
	for _, issue := range run.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, contracts.IssueNoBaselineHistory)
	assert.Contains(t, codes, contracts.IssueZeroTeamAverage)
}

func TestIncompleteEventSkipped(t *testing.T) {
	ev := newTestEvaluator(t)

	events := []contracts.TestEvent{
		event("kim_a", "", day(8), 0.50, 0.40, 180),
	}

	run, err := ev.Evaluate(events)
	require.NoError(t, err)

	assert.Equal(t, 0, run.EventsEvaluated)
	assert.Equal(t, 1, run.EventsSkipped)
	require.Len(t, run.Issues, 1)
	assert.Equal(t, contracts.IssueIncompleteEvent, run.Issues[0].Code)
}

func TestEvaluateIdempotent(t *testing.T) {
	ev := newTestEvaluator(t)

	events := []contracts.TestEvent{
		event("lee_b", "WBB", day(1), 0.50, 0.40, 200),
		event("kim_a", "WBB", day(2), 0.50, 0.40, 200),
		event("kim_a", "WBB", day(8), 0.42, 0.36, 170),
		event("lee_b", "WBB", day(9), 0.51, 0.41, 205),
	}

	run1, err := ev.Evaluate(events)
	require.NoError(t, err)

	// Shuffled input order must not change the output.
	shuffled := []contracts.TestEvent{events[2], events[0], events[3], events[1]}
	run2, err := ev.Evaluate(shuffled)
	require.NoError(t, err)

	assert.Equal(t, run1.Records, run2.Records)
	assert.Equal(t, run1.ConfigHash, run2.ConfigHash)
}

func TestEventDoesNotContributeToOwnBaseline(t *testing.T) {
	ev := newTestEvaluator(t)

	// If the evaluated event leaked into its own baseline the median
	// would shift to 0.47 and 0.44 would no longer flag
	// (0.9 x 0.47 = 0.423).
	events := []contracts.TestEvent{
		event("kim_a", "WBB", day(1), 0.50, 0.40, 180),
		event("kim_a", "WBB", day(8), 0.44, 0.40, 180),
	}

	run, err := ev.Evaluate(events)
	require.NoError(t, err)

	assert.Contains(t, reasonsFor(run, "kim_a", day(8)), "mRSI drop >=10% vs baseline")
}
