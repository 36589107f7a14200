package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/logger"
)

func newTestValidator() *Validator {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	return NewValidator(log)
}

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	events := []contracts.TestEvent{
		{PlayerName: "kim_a", Team: "WBB", TestDate: day(1), MRSI: 0.5, JumpHeightM: 0.4, PropulsiveNetImpulseNs: 180},
		{PlayerName: "", Team: "WBB", TestDate: day(2), MRSI: 0.5, JumpHeightM: 0.4, PropulsiveNetImpulseNs: 180},
		{PlayerName: "lee_b", Team: "WBB", TestDate: day(3), MRSI: 0, JumpHeightM: 0.4, PropulsiveNetImpulseNs: 180},
	}

	issues := v.Validate(events)
	require.Len(t, issues, 2)
	assert.Equal(t, contracts.IssueIncompleteEvent, issues[0].Code)
	assert.Equal(t, "lee_b", issues[1].PlayerName)
	assert.Contains(t, issues[1].Message, "mRSI")
}

func TestValidateCleanInput(t *testing.T) {
	v := newTestValidator()

	events := []contracts.TestEvent{
		{PlayerName: "kim_a", Team: "WBB", TestDate: day(1), MRSI: 0.5, JumpHeightM: 0.4, PropulsiveNetImpulseNs: 180},
	}

	assert.Empty(t, v.Validate(events))
}

func TestCoverage(t *testing.T) {
	v := newTestValidator()

	events := []contracts.TestEvent{
		{PlayerName: "kim_a", Team: "WBB", TestDate: day(1), MRSI: 0.5, JumpHeightM: 0.4, PropulsiveNetImpulseNs: 180},
		{PlayerName: "kim_a", Team: "WBB", TestDate: day(5), MRSI: 0.5, JumpHeightM: 0, PropulsiveNetImpulseNs: 185},
		{PlayerName: "lee_b", Team: "WBB", TestDate: day(3), MRSI: 0.6, JumpHeightM: 0.45, PropulsiveNetImpulseNs: 200},
		{PlayerName: "par_c", Team: "MBB", TestDate: day(2), MRSI: 0.4, JumpHeightM: 0.35, PropulsiveNetImpulseNs: 0},
	}

	snap := v.Coverage(events)

	assert.Equal(t, 4, snap.TotalEvents)
	assert.Equal(t, 3, snap.Athletes)
	assert.Equal(t, 2, snap.Teams)
	assert.Equal(t, day(1), snap.FirstTestDate)
	assert.Equal(t, day(5), snap.LastTestDate)

	assert.InDelta(t, 1.0, snap.Coverage[contracts.MetricMRSI], 1e-9)
	assert.InDelta(t, 0.75, snap.Coverage[contracts.MetricJumpHeight], 1e-9)
	assert.InDelta(t, 0.75, snap.Coverage[contracts.MetricPropulsiveNetImpulse], 1e-9)
	assert.InDelta(t, (1.0+0.75+0.75)/3, snap.QualityScore, 1e-9)
}

func TestCoverageEmpty(t *testing.T) {
	v := newTestValidator()

	snap := v.Coverage(nil)
	assert.Equal(t, 0, snap.TotalEvents)
	assert.Equal(t, 0.0, snap.QualityScore)
}
