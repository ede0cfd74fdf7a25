package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/parquet-go/parquet-go"
)

const parquetBatchSize = 1000

func init() {
	Register(parquetFormat{})
}

type parquetFormat struct{}

func (parquetFormat) Name() string         { return "parquet" }
func (parquetFormat) Extensions() []string { return []string{".parquet"} }

func (parquetFormat) WriteFile(path string, t Table) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}

	w := newParquetTableWriter(file, t)
	if err := w.writeRows(t.Rows); err != nil {
		w.writer.Close()
		file.Close()
		return err
	}
	if err := w.writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}

type parquetTableWriter struct {
	writer *parquet.Writer
	// order maps leaf position in the schema (sorted by name) to the table
	// column it is read from.
	order []int
}

func newParquetTableWriter(file io.Writer, t Table) *parquetTableWriter {
	group := make(parquet.Group, len(t.Columns))
	for _, c := range t.Columns {
		group[c.Name] = columnNode(c.Kind)
	}

	order := make([]int, len(t.Columns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.Columns[order[a]].Name < t.Columns[order[b]].Name
	})

	name := t.Name
	if name == "" {
		name = "record"
	}
	schema := parquet.NewSchema(name, group)
	return &parquetTableWriter{
		writer: parquet.NewWriter(file, schema, parquet.Compression(&parquet.Snappy)),
		order:  order,
	}
}

func columnNode(kind Kind) parquet.Node {
	switch kind {
	case KindFloat:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case KindInt:
		return parquet.Optional(parquet.Int(64))
	default:
		return parquet.Optional(parquet.String())
	}
}

func (w *parquetTableWriter) writeRows(rows [][]interface{}) error {
	batch := make([]parquet.Row, 0, parquetBatchSize)
	for i, r := range rows {
		batch = append(batch, w.toRow(r))
		if len(batch) == parquetBatchSize || i == len(rows)-1 {
			if _, err := w.writer.WriteRows(batch); err != nil {
				return fmt.Errorf("failed to write parquet rows: %w", err)
			}
			batch = batch[:0]
		}
	}
	return nil
}

func (w *parquetTableWriter) toRow(values []interface{}) parquet.Row {
	row := make(parquet.Row, len(w.order))
	for leaf, col := range w.order {
		if col >= len(values) || values[col] == nil {
			row[leaf] = parquet.NullValue().Level(0, 0, leaf)
			continue
		}
		row[leaf] = toParquetValue(values[col]).Level(0, 1, leaf)
	}
	return row
}

func toParquetValue(v interface{}) parquet.Value {
	switch x := v.(type) {
	case float64:
		return parquet.DoubleValue(x)
	case int:
		return parquet.Int64Value(int64(x))
	case string:
		return parquet.ByteArrayValue([]byte(x))
	default:
		return parquet.ByteArrayValue([]byte(fmt.Sprintf("%v", x)))
	}
}
