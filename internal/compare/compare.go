// Package compare pairs two stats tables position by position and reports
// how each operation's duration and preceding bubble changed.
package compare

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"stepscope/internal/output"
)

// Match kinds.
const (
	MatchSame          = "same"
	MatchRenamed       = "renamed"
	MatchBaselineOnly  = "baseline_only"
	MatchCandidateOnly = "candidate_only"
)

// StatsRow is one row of a stats table as read back from disk.
type StatsRow struct {
	Name        string
	AvgStart    float64
	AvgEnd      float64
	AvgDuration float64
	Bubble      float64
}

// Match pairs the rows found at one position of both tables.
type Match struct {
	Position        int
	BaselineName    string
	CandidateName   string
	BaselineDur     float64
	CandidateDur    float64
	BaselineBubble  float64
	CandidateBubble float64
	ChangePct       float64
	HasChange       bool
	Kind            string
}

// Result holds the comparison of two tables.
type Result struct {
	BaselineName    string
	CandidateName   string
	BaselineCount   int
	CandidateCount  int
	BaselineBusy    float64
	CandidateBusy   float64
	BaselineBubble  float64
	CandidateBubble float64
	Matches         []Match
}

// Compare pairs baseline and candidate rows strictly by position. Positions
// past the shorter table appear as baseline_only or candidate_only.
func Compare(baseline, candidate []StatsRow) *Result {
	r := &Result{
		BaselineCount:  len(baseline),
		CandidateCount: len(candidate),
	}
	for _, b := range baseline {
		r.BaselineBusy += b.AvgDuration
		r.BaselineBubble += b.Bubble
	}
	for _, c := range candidate {
		r.CandidateBusy += c.AvgDuration
		r.CandidateBubble += c.Bubble
	}

	n := max(len(baseline), len(candidate))
	r.Matches = make([]Match, 0, n)
	for i := 0; i < n; i++ {
		m := Match{Position: i}
		switch {
		case i >= len(candidate):
			b := baseline[i]
			m.BaselineName, m.BaselineDur, m.BaselineBubble = b.Name, b.AvgDuration, b.Bubble
			m.Kind = MatchBaselineOnly
		case i >= len(baseline):
			c := candidate[i]
			m.CandidateName, m.CandidateDur, m.CandidateBubble = c.Name, c.AvgDuration, c.Bubble
			m.Kind = MatchCandidateOnly
		default:
			b, c := baseline[i], candidate[i]
			m.BaselineName, m.BaselineDur, m.BaselineBubble = b.Name, b.AvgDuration, b.Bubble
			m.CandidateName, m.CandidateDur, m.CandidateBubble = c.Name, c.AvgDuration, c.Bubble
			m.Kind = MatchSame
			if b.Name != c.Name {
				m.Kind = MatchRenamed
			}
			if b.AvgDuration > 0 {
				m.ChangePct = (c.AvgDuration - b.AvgDuration) / b.AvgDuration * 100
				m.HasChange = true
			}
		}
		r.Matches = append(r.Matches, m)
	}
	return r
}

// CompareFiles reads two stats CSV files and compares them.
func CompareFiles(baselinePath, candidatePath string) (*Result, error) {
	baseline, err := ReadStats(baselinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}
	candidate, err := ReadStats(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate: %w", err)
	}
	r := Compare(baseline, candidate)
	r.BaselineName = filepath.Base(baselinePath)
	r.CandidateName = filepath.Base(candidatePath)
	return r, nil
}

// ReadStats reads a stats CSV written by the stats command.
func ReadStats(path string) ([]StatsRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseStats(file)
}

// ParseStats reads stats rows from CSV text.
func ParseStats(r io.Reader) ([]StatsRow, error) {
	header, records, err := output.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return parseStats(header, records)
}

func parseStats(header []string, records [][]string) ([]StatsRow, error) {
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[col] = i
	}
	required := []string{"operation_name", "avg_start_time_us", "avg_end_time_us", "avg_duration_us", "bubble_time_us"}
	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("CSV missing required column %s", col)
		}
	}

	rows := make([]StatsRow, 0, len(records))
	for line, record := range records {
		field := func(col string) (float64, error) {
			idx := colIdx[col]
			if idx >= len(record) {
				return 0, fmt.Errorf("row %d: missing %s", line+1, col)
			}
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return 0, fmt.Errorf("row %d: invalid %s: %w", line+1, col, err)
			}
			return v, nil
		}

		row := StatsRow{}
		if idx := colIdx["operation_name"]; idx < len(record) {
			row.Name = record[idx]
		}
		var err error
		if row.AvgStart, err = field("avg_start_time_us"); err != nil {
			return nil, err
		}
		if row.AvgEnd, err = field("avg_end_time_us"); err != nil {
			return nil, err
		}
		if row.AvgDuration, err = field("avg_duration_us"); err != nil {
			return nil, err
		}
		if row.Bubble, err = field("bubble_time_us"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
