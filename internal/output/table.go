// Package output writes result tables as CSV, JSON, XLSX or Parquet and
// renders timeline charts.
package output

import "fmt"

// Precision is the number of decimal places used for floats in text formats.
const Precision = 3

// Kind is the value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
)

// Column describes one table column.
type Column struct {
	Name string
	Kind Kind
	// HighlightNegative marks float columns whose negative values deserve
	// attention in formats that support styling.
	HighlightNegative bool
}

// MetaField is a key/value pair describing how a table was produced.
type MetaField struct {
	Key   string
	Value string
}

// Table is an ordered set of rows with a fixed column layout. Row values must
// be string, float64 or int according to the column kind.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
	Meta    []MetaField
}

// Header returns the column names in order.
func (t Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// AddMeta appends a metadata entry.
func (t *Table) AddMeta(key, value string) {
	t.Meta = append(t.Meta, MetaField{Key: key, Value: value})
}

// FormatValue renders v as text, floats at fixed Precision.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.*f", Precision, x)
	case int:
		return fmt.Sprintf("%d", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
