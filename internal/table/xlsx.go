package table

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// ReadXLSX reads the first worksheet of an Office Open XML workbook.
func ReadXLSX(ctx context.Context, data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}
	sheet := sheets[0]

	shape, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	x := &xlsxSheet{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		x.date1904 = *props.Date1904
	}

	rows := make([]Row, 0, len(shape))
	for i, values := range shape {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := make([]Cell, len(values))
		for j := range values {
			c, err := x.cell(j+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
			}
			cells[j] = c
		}
		rows = append(rows, Row{Number: i + 1, Cells: cells})
	}
	return rows, nil
}

type xlsxSheet struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (x *xlsxSheet) cell(col, row int) (Cell, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, err
	}
	if formula, err := x.f.GetCellFormula(x.sheet, name); err == nil && formula != "" {
		return FormulaCell(formula), nil
	}
	typ, err := x.f.GetCellType(x.sheet, name)
	if err != nil {
		return Cell{}, err
	}
	raw, err := x.f.GetCellValue(x.sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, err
	}
	if raw == "" {
		return BlankCell(), nil
	}

	switch typ {
	case excelize.CellTypeBool:
		return BooleanCell(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return DateCell(t), nil
		}
		return TextCell(raw), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return TextCell(norm.NFC.String(raw)), nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return TextCell(norm.NFC.String(raw)), nil
	}
	if x.isDateStyled(name) {
		if t, err := excelize.ExcelDateToTime(f, x.date1904); err == nil {
			return DateCell(t), nil
		}
	}
	return NumericCell(f), nil
}

func (x *xlsxSheet) isDateStyled(name string) bool {
	idx, err := x.f.GetCellStyle(x.sheet, name)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := x.dateStyles[idx]; ok {
		return v
	}
	style, err := x.f.GetStyle(idx)
	isDate := err == nil && style != nil &&
		(isBuiltinDateFormat(style.NumFmt) || (style.CustomNumFmt != nil && isDatePattern(*style.CustomNumFmt)))
	x.dateStyles[idx] = isDate
	return isDate
}

// Built-in number formats that render a date or date-time, including the
// CJK locale ranges.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

var literalSections = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDatePattern(format string) bool {
	f := strings.ToLower(literalSections.ReplaceAllString(format, ""))
	return strings.ContainsAny(f, "yd")
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
