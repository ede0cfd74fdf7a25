package output

import (
	"encoding/csv"
	"fmt"
	"io"
)

func init() {
	Register(csvFormat{})
}

type csvFormat struct{}

func (csvFormat) Name() string         { return "csv" }
func (csvFormat) Extensions() []string { return []string{".csv"} }

func (csvFormat) WriteFile(path string, t Table) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCSV writes the header row followed by one record per row. Metadata is
// not written so the file stays a plain table.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Header()); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
		for j, v := range row {
			record[j] = FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParseCSV reads a header row and all following records from r.
func ParseCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		records = append(records, record)
	}
	return header, records, nil
}
