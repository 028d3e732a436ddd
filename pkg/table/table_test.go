package table

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestEnsureColumnPreservesFirstSeenOrder(t *testing.T) {
	tbl := New()
	tbl.EnsureColumn("B")
	tbl.EnsureColumn("A")
	tbl.EnsureColumn("B")
	tbl.EnsureColumn("C")

	assert.Equal(t, []string{"B", "A", "C"}, tbl.Columns)
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "Alabama", "Alabama"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"number integer", json.Number("42"), "42"},
		{"number float", json.Number("3.14"), "3.14"},
		{"large integer keeps precision", json.Number("9007199254740993"), "9007199254740993"},
		{"float64 whole", float64(2022), "2022"},
		{"float64 fraction", 1.5, "1.5"},
		{"int", 7, "7"},
		{"int64", int64(-9), "-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueString(tt.value))
		})
	}
}

func TestCellOutOfRange(t *testing.T) {
	tbl := New("A")
	tbl.Append(Row{"A": "x"})

	assert.Nil(t, tbl.Cell(-1, "A"))
	assert.Nil(t, tbl.Cell(1, "A"))
	assert.Equal(t, "x", tbl.Cell(0, "A"))
}
