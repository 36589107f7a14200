package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athlab/vigil/internal/contracts"
)

func TestReadCSV(t *testing.T) {
	input := `playername,team,test_date,mrsi,jump_height_m,propulsive_net_impulse_ns
kim_a,WBB,2025-11-01,0.50,0.40,180.5
lee_b,WBB,2025-11-02,0.55,0.42,195
`

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	assert.Empty(t, result.Issues)

	e := result.Events[0]
	assert.Equal(t, "kim_a", e.PlayerName)
	assert.Equal(t, "WBB", e.Team)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), e.TestDate)
	assert.InDelta(t, 0.50, e.MRSI, 1e-9)
	assert.InDelta(t, 0.40, e.JumpHeightM, 1e-9)
	assert.InDelta(t, 180.5, e.PropulsiveNetImpulseNs, 1e-9)
}

func TestReadCSVColumnOrderIndependent(t *testing.T) {
	input := `team,mrsi,playername,propulsive_net_impulse_ns,test_date,jump_height_m
WBB,0.50,kim_a,180.5,2025-11-01,0.40
`

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "kim_a", result.Events[0].PlayerName)
	assert.InDelta(t, 0.40, result.Events[0].JumpHeightM, 1e-9)
}

func TestReadCSVMissingColumn(t *testing.T) {
	input := `playername,team,test_date,mrsi
kim_a,WBB,2025-11-01,0.50
`

	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jump_height_m")
}

func TestReadCSVBadLinesCollected(t *testing.T) {
	input := `playername,team,test_date,mrsi,jump_height_m,propulsive_net_impulse_ns
kim_a,WBB,2025-11-01,0.50,0.40,180.5
lee_b,WBB,not-a-date,0.55,0.42,195
par_c,MBB,2025-11-03,abc,0.38,170
yun_d,MBB,2025-11-04,0.47,,168
`

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	// Bad date and bad number are rejected; the empty metric cell is a
	// missing value, not a parse error.
	require.Len(t, result.Events, 2)
	require.Len(t, result.Issues, 2)

	assert.Equal(t, contracts.IssueParseError, result.Issues[0].Code)
	assert.Contains(t, result.Issues[0].Message, "line 3")
	assert.Contains(t, result.Issues[1].Message, "line 4")

	assert.Equal(t, "yun_d", result.Events[1].PlayerName)
	assert.Equal(t, 0.0, result.Events[1].JumpHeightM)
}

func TestReadCSVAcceptsTimestampDates(t *testing.T) {
	input := `playername,team,test_date,mrsi,jump_height_m,propulsive_net_impulse_ns
kim_a,WBB,2025-11-01 08:30:00,0.50,0.40,180.5
`

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, 2025, result.Events[0].TestDate.Year())
}
