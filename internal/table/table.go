// Package table exposes spreadsheet-like input as rows of typed cells.
//
// Readers turn raw bytes (CSV, XLSX) or API value matrices into []Row; the
// import pipeline only depends on Row and Cell.
package table

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"giftledger/internal/core"
)

type Kind int

const (
	Blank Kind = iota
	Text
	Numeric
	Boolean
	Date
	Formula
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case Formula:
		return "formula"
	default:
		return "blank"
	}
}

// ErrUnreadable is returned when bytes cannot be interpreted as a table.
var ErrUnreadable = errors.New("table: unreadable input")

// Cell is one typed spreadsheet value. Only the accessor matching Kind is
// meaningful.
type Cell struct {
	kind    Kind
	text    string
	number  float64
	boolean bool
	date    time.Time
}

func BlankCell() Cell              { return Cell{kind: Blank} }
func TextCell(s string) Cell       { return Cell{kind: Text, text: s} }
func NumericCell(f float64) Cell   { return Cell{kind: Numeric, number: f} }
func BooleanCell(b bool) Cell      { return Cell{kind: Boolean, boolean: b} }
func DateCell(t time.Time) Cell    { return Cell{kind: Date, date: t} }
func FormulaCell(expr string) Cell { return Cell{kind: Formula, text: expr} }

func (c Cell) Kind() Kind      { return c.kind }
func (c Cell) Text() string    { return c.text }
func (c Cell) Number() float64 { return c.number }
func (c Cell) Bool() bool      { return c.boolean }
func (c Cell) Time() time.Time { return c.date }
func (c Cell) Formula() string { return c.text }

// IsBlank reports a blank cell or one holding only whitespace.
func (c Cell) IsBlank() bool {
	return c.kind == Blank || (c.kind == Text && strings.TrimSpace(c.text) == "")
}

// String stringifies any kind: integral numbers drop the decimals, dates use
// yyyy-MM-dd and formulas render their expression.
func (c Cell) String() string {
	switch c.kind {
	case Text, Formula:
		return c.text
	case Numeric:
		return strconv.FormatFloat(c.number, 'f', -1, 64)
	case Boolean:
		return strconv.FormatBool(c.boolean)
	case Date:
		return core.DateOf(c.date).String()
	default:
		return ""
	}
}

// Row is one table row. Number is 1-based and counts the header as row 1.
type Row struct {
	Number int
	Cells  []Cell
}

// Cell returns the cell at the zero-based column, or a blank cell when the
// row is shorter.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return BlankCell()
	}
	return r.Cells[i]
}

func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Reader turns raw bytes into rows, header included.
type Reader interface {
	Read(ctx context.Context, data []byte) ([]Row, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, data []byte) ([]Row, error)

func (f ReaderFunc) Read(ctx context.Context, data []byte) ([]Row, error) {
	return f(ctx, data)
}

var zipMagic = []byte("PK\x03\x04")

// Detect picks the XLSX reader for zip containers and the CSV reader otherwise.
func Detect(data []byte) Reader {
	if bytes.HasPrefix(data, zipMagic) {
		return ReaderFunc(ReadXLSX)
	}
	return ReaderFunc(ReadCSV)
}

// Read sniffs the format and reads data.
func Read(ctx context.Context, data []byte) ([]Row, error) {
	return Detect(data).Read(ctx, data)
}
