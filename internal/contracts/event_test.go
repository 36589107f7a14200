package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "mRSI", MetricMRSI.Label())
	assert.Equal(t, "Jump Height(m)", MetricJumpHeight.Label())
	assert.Equal(t, "Propulsive Net Impulse(N.s)", MetricPropulsiveNetImpulse.Label())
}

func TestTestEventMetricValue(t *testing.T) {
	e := TestEvent{
		PlayerName:             "kim_a",
		Team:                   "WBB",
		TestDate:               time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		MRSI:                   0.48,
		JumpHeightM:            0.41,
		PropulsiveNetImpulseNs: 182.5,
	}

	assert.Equal(t, 0.48, e.MetricValue(MetricMRSI))
	assert.Equal(t, 0.41, e.MetricValue(MetricJumpHeight))
	assert.Equal(t, 182.5, e.MetricValue(MetricPropulsiveNetImpulse))
	assert.Equal(t, 0.0, e.MetricValue(Metric("unknown")))
}

func TestTestEventComplete(t *testing.T) {
	base := TestEvent{
		PlayerName:             "kim_a",
		Team:                   "WBB",
		TestDate:               time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		MRSI:                   0.48,
		JumpHeightM:            0.41,
		PropulsiveNetImpulseNs: 182.5,
	}

	tests := []struct {
		name   string
		mutate func(*TestEvent)
		want   bool
	}{
		{"complete", func(e *TestEvent) {}, true},
		{"missing player", func(e *TestEvent) { e.PlayerName = "" }, false},
		{"missing team", func(e *TestEvent) { e.Team = "" }, false},
		{"zero date", func(e *TestEvent) { e.TestDate = time.Time{} }, false},
		{"zero mrsi", func(e *TestEvent) { e.MRSI = 0 }, false},
		{"negative jump height", func(e *TestEvent) { e.JumpHeightM = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			assert.Equal(t, tt.want, e.Complete())
		})
	}
}

func TestFlagRunAthleteCount(t *testing.T) {
	run := FlagRun{
		Records: []FlaggedRecord{
			{PlayerName: "kim_a", FlagReason: "a"},
			{PlayerName: "kim_a", FlagReason: "b"},
			{PlayerName: "lee_b", FlagReason: "a"},
		},
	}

	assert.Equal(t, 3, run.Count())
	assert.Equal(t, 2, run.AthleteCount())
}
