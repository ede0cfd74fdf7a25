package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Results"

func init() {
	Register(xlsxFormat{})
}

type xlsxFormat struct{}

func (xlsxFormat) Name() string         { return "xlsx" }
func (xlsxFormat) Extensions() []string { return []string{".xlsx"} }

func (xlsxFormat) WriteFile(path string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := FillSheet(f, t); err != nil {
		return err
	}
	if len(t.Meta) > 0 {
		if err := writeMetaSheet(f, t.Meta); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// HeaderStyle registers the bold white-on-blue header style in f.
func HeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// FillSheet writes t into the first sheet of f, renamed after the table.
// The header row is styled and frozen, and an auto-filter covers the data.
// Negative values in columns marked HighlightNegative are shaded red.
func FillSheet(f *excelize.File, t Table) error {
	sheet := t.Name
	if sheet == "" {
		sheet = defaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	headerStyle, err := HeaderStyle(f)
	if err != nil {
		return err
	}
	negativeStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Font: &excelize.Font{Color: "#9C0006"},
	})
	if err != nil {
		return err
	}

	for i, c := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.Name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}

		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 14.0
		if c.Kind == KindString {
			width = 55
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", r, len(row), len(t.Columns))
		}
		start, _ := excelize.CoordinatesToCellName(1, r+2)
		values := make([]interface{}, len(row))
		copy(values, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		for i, c := range t.Columns {
			v, ok := row[i].(float64)
			if !c.HighlightNegative || !ok || v >= 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellStyle(sheet, cell, cell, negativeStyle); err != nil {
				return err
			}
		}
	}

	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), len(t.Rows)+1)
		if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeMetaSheet(f *excelize.File, meta []MetaField) error {
	const sheet = "Run"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return err
	}
	for i, m := range meta {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), m.Key); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), m.Value); err != nil {
			return err
		}
	}
	return nil
}
