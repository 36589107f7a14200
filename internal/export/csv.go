package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/athlab/vigil/internal/contracts"
)

// Header is the flagged-athletes CSV column order.
var Header = []string{"playername", "team", "flag_reason", "metric_value", "last_test_date"}

// WriteCSV writes flagged records as CSV. Rows are sorted by
// (playername, team, date, reason) so identical runs produce
// byte-identical output.
func WriteCSV(w io.Writer, records []contracts.FlaggedRecord) error {
	sorted := make([]contracts.FlaggedRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SortKey() < sorted[j].SortKey()
	})

	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range sorted {
		r := &sorted[i]
		row := []string{
			r.PlayerName,
			r.Team,
			r.FlagReason,
			strconv.FormatFloat(r.MetricValue, 'f', -1, 64),
			r.LastTestDate.Format("2006-01-02"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record for %s: %w", r.PlayerName, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes flagged records to a CSV file, replacing any
// previous run's output.
func WriteFile(path string, records []contracts.FlaggedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
