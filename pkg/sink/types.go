package sink

import (
	json "github.com/goccy/go-json"

	"github.com/statpull/statpull/pkg/table"
)

// columnKind is the inferred storage class of a column, derived from the
// first non-null cell. Columns with no non-null cells default to text.
type columnKind int

const (
	colText columnKind = iota
	colBool
	colInt
	colFloat
)

func inferColumnKind(t *table.Table, column string) columnKind {
	for _, row := range t.Rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case bool:
			return colBool
		case json.Number:
			if _, err := n.Int64(); err == nil {
				return colInt
			}
			return colFloat
		case float64:
			return colFloat
		default:
			return colText
		}
	}
	return colText
}

// cellValue converts a cell to the driver-level value for a column of the
// given kind. Cells that do not fit the inferred kind fall back to their
// textual form and are left for the destination to reject.
func cellValue(v interface{}, kind columnKind) interface{} {
	if v == nil {
		return nil
	}

	switch kind {
	case colBool:
		if b, ok := v.(bool); ok {
			return b
		}
	case colInt:
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i
			}
		}
	case colFloat:
		switch n := v.(type) {
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		case float64:
			return n
		}
	}

	return table.ValueString(v)
}
