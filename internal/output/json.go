package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

func init() {
	Register(jsonFormat{})
}

type jsonFormat struct{}

func (jsonFormat) Name() string         { return "json" }
func (jsonFormat) Extensions() []string { return []string{".json"} }

func (jsonFormat) WriteFile(path string, t Table) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type jsonDocument struct {
	Name string          `json:"name,omitempty"`
	Meta *orderedObject  `json:"meta,omitempty"`
	Rows []orderedObject `json:"rows"`
}

// orderedObject is a JSON object whose keys keep their given order.
type orderedObject struct {
	keys   []string
	values []interface{}
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v interface{}
		if i < len(o.values) {
			v = o.values[i]
		}
		value, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes t as an indented document with one object per row. Row
// keys follow the column order and metadata keys their insertion order.
func WriteJSON(w io.Writer, t Table) error {
	header := t.Header()
	doc := jsonDocument{
		Name: t.Name,
		Rows: make([]orderedObject, 0, len(t.Rows)),
	}
	if len(t.Meta) > 0 {
		meta := &orderedObject{}
		for _, m := range t.Meta {
			meta.keys = append(meta.keys, m.Key)
			meta.values = append(meta.values, m.Value)
		}
		doc.Meta = meta
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
		doc.Rows = append(doc.Rows, orderedObject{keys: header, values: row})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
