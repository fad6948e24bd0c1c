// Package report renders ledger pages, statistics and import outcomes as
// aligned text tables for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"giftledger/internal/core"
)

var printer = message.NewPrinter(language.Korean)

// Amount formats d with thousands separators. Whole amounts have no
// fraction; averages keep two places.
func Amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("%d", d.IntPart())
	}
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

// Count formats n with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

func transactionLabel(t core.TransactionType) string {
	switch t {
	case core.Received:
		return "받음"
	case core.Sent:
		return "보냄"
	default:
		return string(t)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// table buffers tab separated rows and aligns them on flush.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// JSON writes v indented, for scripts.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Entry prints one entry as field: value lines.
func Entry(w io.Writer, e core.Entry) error {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row("ID", fmt.Sprint(e.ID))
	t.row("날짜", e.EventDate.String())
	t.row("행사", e.EventType)
	t.row("구분", transactionLabel(e.TransactionType))
	t.row("이름", e.CounterpartyName)
	t.row("관계", dash(e.Relation))
	t.row("금액", Amount(e.Amount))
	t.row("연락처", dash(e.Contact))
	t.row("메모", dash(e.Memo))
	return t.flush()
}

// Page prints one listing page followed by its paging summary.
func Page(w io.Writer, p core.Page) error {
	t := newTable(w, "ID", "날짜", "행사", "구분", "이름", "관계", "금액")
	for _, e := range p.Items {
		t.row(fmt.Sprint(e.ID), e.EventDate.String(), e.EventType, transactionLabel(e.TransactionType),
			e.CounterpartyName, dash(e.Relation), Amount(e.Amount))
	}
	if err := t.flush(); err != nil {
		return err
	}
	current := p.Page + 1
	if p.TotalPages == 0 {
		current = 0
	}
	_, err := fmt.Fprintf(w, "\n%d / %d 페이지 (총 %s건)\n", current, p.TotalPages, Count(p.TotalItems))
	return err
}

// ImportResult summarises a committed batch.
func ImportResult(w io.Writer, r core.ImportResult) error {
	if r.SuccessCount == 0 {
		_, err := fmt.Fprintln(w, "가져올 데이터가 없습니다")
		return err
	}
	_, err := fmt.Fprintf(w, "%s건을 가져왔습니다 (배치 %s)\n", Count(int64(r.SuccessCount)), r.BatchID)
	return err
}

// ImportFailure lists every rejected row of a batch.
func ImportFailure(w io.Writer, ie *core.ImportError) error {
	_, err := fmt.Fprintln(w, ie.Error())
	return err
}
