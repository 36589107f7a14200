package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athlab/vigil/internal/contracts"
)

func sampleRecords() []contracts.FlaggedRecord {
	d := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	return []contracts.FlaggedRecord{
		{PlayerName: "lee_b", Team: "WBB", FlagReason: "mRSI drop >=10% vs baseline", MetricValue: 0.44, LastTestDate: d},
		{PlayerName: "kim_a", Team: "WBB", FlagReason: "Jump Height(m) drop >=7% vs baseline", MetricValue: 0.37, LastTestDate: d},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	want := "playername,team,flag_reason,metric_value,last_test_date\n" +
		"kim_a,WBB,Jump Height(m) drop >=7% vs baseline,0.37,2025-11-08\n" +
		"lee_b,WBB,mRSI drop >=10% vs baseline,0.44,2025-11-08\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "playername,team,flag_reason,metric_value,last_test_date\n", buf.String())
}

func TestWriteCSVDeterministic(t *testing.T) {
	records := sampleRecords()
	reversed := []contracts.FlaggedRecord{records[1], records[0]}

	var a, b bytes.Buffer
	require.NoError(t, WriteCSV(&a, records))
	require.NoError(t, WriteCSV(&b, reversed))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part4_flagged_athletes.csv")
	require.NoError(t, WriteFile(path, sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kim_a,WBB")

	// Re-running replaces the file, not appends.
	require.NoError(t, WriteFile(path, sampleRecords()))
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
