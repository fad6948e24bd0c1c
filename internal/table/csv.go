package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads comma separated UTF-8 text. Every non-empty field becomes a
// Text cell; type coercion happens in the importer.
func ReadCSV(ctx context.Context, data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, bom)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: csv is not valid UTF-8", ErrUnreadable)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows []Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		cells := make([]Cell, len(rec))
		for i, v := range rec {
			if v == "" {
				cells[i] = BlankCell()
				continue
			}
			cells[i] = TextCell(norm.NFC.String(v))
		}
		// encoding/csv skips empty lines; keep the physical line as the row number
		line, _ := r.FieldPos(0)
		rows = append(rows, Row{Number: line, Cells: cells})
	}
	return rows, nil
}
