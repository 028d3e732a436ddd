// Package table provides the in-memory tabular representation of one API
// fetch. A Table is an ordered list of uppercase column names plus rows of
// column name to scalar cell. Uppercasing column names is the sole
// transformation applied to API output.
package table

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Row maps an uppercase column name to a scalar cell value. Cell values
// are one of: nil, string, bool, json.Number, or a JSON-encoded string for
// nested arrays.
type Row map[string]interface{}

// Table is the normalized result of one fetch. Column order is the
// first-seen order of uppercased keys across all rows, which is
// deterministic for identical input.
type Table struct {
	Columns []string
	Rows    []Row

	colSet map[string]struct{}
}

// New creates an empty table with the given columns, in order.
func New(columns ...string) *Table {
	t := &Table{colSet: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		t.EnsureColumn(c)
	}
	return t
}

// EnsureColumn registers a column if it has not been seen yet, preserving
// first-seen order.
func (t *Table) EnsureColumn(name string) {
	if t.colSet == nil {
		t.colSet = make(map[string]struct{})
	}
	if _, ok := t.colSet[name]; ok {
		return
	}
	t.colSet[name] = struct{}{}
	t.Columns = append(t.Columns, name)
}

// Append adds a row. Columns present in the row but not yet registered are
// appended to the column list in an unspecified order, so callers that care
// about ordering should register columns first via EnsureColumn.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Cell returns the raw cell value at the given row for the given column,
// or nil when absent.
func (t *Table) Cell(i int, column string) interface{} {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][column]
}

// CellString returns the textual form of a cell, as written to CSV.
func (t *Table) CellString(i int, column string) string {
	return ValueString(t.Cell(i, column))
}

// ValueString converts a cell value to its textual form. Nil cells render
// as the empty string.
func ValueString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
