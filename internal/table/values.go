package table

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// FromValues converts a Sheets API value matrix (as returned with
// UNFORMATTED_VALUE and FORMATTED_STRING dates) into rows. The first row is
// numbered firstRow.
func FromValues(values [][]any, firstRow int) []Row {
	rows := make([]Row, 0, len(values))
	for i, vs := range values {
		cells := make([]Cell, len(vs))
		for j, v := range vs {
			cells[j] = valueCell(v)
		}
		rows = append(rows, Row{Number: firstRow + i, Cells: cells})
	}
	return rows
}

func valueCell(v any) Cell {
	switch t := v.(type) {
	case nil:
		return BlankCell()
	case string:
		if t == "" {
			return BlankCell()
		}
		return TextCell(norm.NFC.String(t))
	case float64:
		return NumericCell(t)
	case float32:
		return NumericCell(float64(t))
	case int:
		return NumericCell(float64(t))
	case int64:
		return NumericCell(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return NumericCell(f)
		}
		return TextCell(t.String())
	case bool:
		return BooleanCell(t)
	default:
		return TextCell(fmt.Sprint(t))
	}
}
