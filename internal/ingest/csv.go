package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/athlab/vigil/internal/contracts"
)

// Result is the outcome of reading one CSV source: the parsed events
// plus one issue per rejected line. A bad line never aborts the import.
type Result struct {
	Events []contracts.TestEvent
	Issues []contracts.ValidationIssue
}

// column indexes resolved from the header row.
type columns struct {
	player, team, date, mrsi, jh, pni int
}

// dateFormats accepted for test_date values.
var dateFormats = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// ReadCSV parses test events from a header-mapped CSV stream. Column
// order does not matter; the six canonical columns must all be present.
func ReadCSV(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1

	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Issues = append(result.Issues, parseIssue(line, err.Error()))
			continue
		}

		event, perr := parseRow(row, cols)
		if perr != nil {
			result.Issues = append(result.Issues, parseIssue(line, perr.Error()))
			continue
		}

		result.Events = append(result.Events, event)
	}

	return result, nil
}

// ReadFile parses test events from a CSV file.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// resolveColumns maps header names to column indexes.
func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cols := columns{}
	required := []struct {
		name string
		dest *int
	}{
		{"playername", &cols.player},
		{"team", &cols.team},
		{"test_date", &cols.date},
		{"mrsi", &cols.mrsi},
		{"jump_height_m", &cols.jh},
		{"propulsive_net_impulse_ns", &cols.pni},
	}

	for _, req := range required {
		i, ok := index[req.name]
		if !ok {
			return cols, fmt.Errorf("missing required column %q", req.name)
		}
		*req.dest = i
	}

	return cols, nil
}

// parseRow converts one CSV row into a TestEvent.
func parseRow(row []string, cols columns) (contracts.TestEvent, error) {
	var e contracts.TestEvent

	max := cols.player
	for _, i := range []int{cols.team, cols.date, cols.mrsi, cols.jh, cols.pni} {
		if i > max {
			max = i
		}
	}
	if len(row) <= max {
		return e, fmt.Errorf("expected at least %d columns, got %d", max+1, len(row))
	}

	e.PlayerName = strings.TrimSpace(row[cols.player])
	e.Team = strings.TrimSpace(row[cols.team])

	date, err := parseDate(row[cols.date])
	if err != nil {
		return e, err
	}
	e.TestDate = date

	if e.MRSI, err = parseMetric(row[cols.mrsi], "mrsi"); err != nil {
		return e, err
	}
	if e.JumpHeightM, err = parseMetric(row[cols.jh], "jump_height_m"); err != nil {
		return e, err
	}
	if e.PropulsiveNetImpulseNs, err = parseMetric(row[cols.pni], "propulsive_net_impulse_ns"); err != nil {
		return e, err
	}

	return e, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable test_date %q", raw)
}

// parseMetric parses a metric value. Empty cells become 0 (missing),
// which the validator and evaluator report downstream.
func parseMetric(raw, name string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable %s value %q", name, raw)
	}
	return v, nil
}

func parseIssue(line int, msg string) contracts.ValidationIssue {
	return contracts.ValidationIssue{
		Code:    contracts.IssueParseError,
		Message: fmt.Sprintf("line %d: %s", line, msg),
	}
}
