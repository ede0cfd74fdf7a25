package compare

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"stepscope/internal/output"
)

// changeThresholdPct separates improvements and regressions from noise.
const changeThresholdPct = 5.0

// Table lays out the comparison for the generic writers.
func (r *Result) Table() output.Table {
	t := output.Table{
		Name: "Comparison",
		Columns: []output.Column{
			{Name: "position", Kind: output.KindInt},
			{Name: "baseline_name", Kind: output.KindString},
			{Name: "candidate_name", Kind: output.KindString},
			{Name: "baseline_duration_us", Kind: output.KindFloat},
			{Name: "candidate_duration_us", Kind: output.KindFloat},
			{Name: "change_pct", Kind: output.KindFloat},
			{Name: "baseline_bubble_us", Kind: output.KindFloat},
			{Name: "candidate_bubble_us", Kind: output.KindFloat},
			{Name: "bubble_delta_us", Kind: output.KindFloat},
			{Name: "match", Kind: output.KindString},
		},
		Rows: make([][]interface{}, 0, len(r.Matches)),
	}
	for _, m := range r.Matches {
		var change interface{}
		if m.HasChange {
			change = m.ChangePct
		}
		t.Rows = append(t.Rows, []interface{}{
			m.Position,
			m.BaselineName,
			m.CandidateName,
			m.BaselineDur,
			m.CandidateDur,
			change,
			m.BaselineBubble,
			m.CandidateBubble,
			m.CandidateBubble - m.BaselineBubble,
			m.Kind,
		})
	}
	t.AddMeta("baseline", r.BaselineName)
	t.AddMeta("candidate", r.CandidateName)
	return t
}

// WriteXLSX writes the comparison with a heatmap on the change column:
// green for improvements, red for regressions, amber within the threshold.
func (r *Result) WriteXLSX(filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	t := r.Table()
	if err := output.FillSheet(f, t); err != nil {
		return err
	}
	sheet := t.Name

	improvedStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#00B050"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	regressedStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FF0000"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	neutralStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC000"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	onlyStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, m := range r.Matches {
		row := i + 2
		changeCell := fmt.Sprintf("F%d", row)
		switch {
		case m.Kind == MatchBaselineOnly || m.Kind == MatchCandidateOnly:
			if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("J%d", row), onlyStyle); err != nil {
				return err
			}
		case !m.HasChange:
		case m.ChangePct < -changeThresholdPct:
			err = f.SetCellStyle(sheet, changeCell, changeCell, improvedStyle)
		case m.ChangePct > changeThresholdPct:
			err = f.SetCellStyle(sheet, changeCell, changeCell, regressedStyle)
		default:
			err = f.SetCellStyle(sheet, changeCell, changeCell, neutralStyle)
		}
		if err != nil {
			return err
		}
	}

	return f.SaveAs(filename)
}

// WriteSummary writes a human-readable comparison summary.
func (r *Result) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\n=== Step Comparison Summary ===\n")
	fmt.Fprintf(w, "Baseline:  %s (%d operations)\n", r.BaselineName, r.BaselineCount)
	fmt.Fprintf(w, "Candidate: %s (%d operations)\n", r.CandidateName, r.CandidateCount)
	fmt.Fprintf(w, "Busy time:   %.3f µs -> %.3f µs\n", r.BaselineBusy, r.CandidateBusy)
	fmt.Fprintf(w, "Bubble time: %.3f µs -> %.3f µs\n", r.BaselineBubble, r.CandidateBubble)

	counts := make(map[string]int)
	for _, m := range r.Matches {
		counts[m.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Fprintf(w, "\nMatch Types:\n")
	for _, k := range kinds {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[k])
	}

	var changed []Match
	for _, m := range r.Matches {
		if m.HasChange {
			changed = append(changed, m)
		}
	}
	sort.SliceStable(changed, func(i, j int) bool {
		return abs(changed[i].CandidateDur-changed[i].BaselineDur) > abs(changed[j].CandidateDur-changed[j].BaselineDur)
	})

	fmt.Fprintf(w, "\n=== Top 10 Duration Changes ===\n")
	for i := 0; i < min(10, len(changed)); i++ {
		m := changed[i]
		fmt.Fprintf(w, "%2d. [%4d] %.3f -> %.3f µs (%+.1f%%) %s\n",
			i+1, m.Position, m.BaselineDur, m.CandidateDur, m.ChangePct, m.BaselineName)
	}
	if len(changed) == 0 {
		fmt.Fprintf(w, "  (none)\n")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
