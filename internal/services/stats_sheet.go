package services

import (
	"strconv"

	"giftledger/internal/core"
	"giftledger/internal/sheets"

	"github.com/shopspring/decimal"
)

// statsBlock is one titled table on an owner's mirror sheet.
type statsBlock struct {
	title  string
	header []any
	rows   [][]any
}

func (b statsBlock) values() [][]any {
	out := make([][]any, 0, len(b.rows)+2)
	out = append(out, []any{b.title}, b.header)
	return append(out, b.rows...)
}

func (b statsBlock) width() int {
	return len(b.header)
}

// placedRange is a block pinned to its A1 range.
type placedRange struct {
	a1     string
	values [][]any
}

// layoutBlocks stacks blocks top to bottom with one empty row between them.
func layoutBlocks(sheet string, blocks []statsBlock) []placedRange {
	out := make([]placedRange, 0, len(blocks))
	row := 1
	for _, b := range blocks {
		v := b.values()
		out = append(out, placedRange{a1: sheets.BlockRange(sheet, row, len(v), b.width()), values: v})
		row += len(v) + 1
	}
	return out
}

func dashboardBlocks(d core.Dashboard) []statsBlock {
	o := d.Overall
	blocks := []statsBlock{{
		title:  "전체 통계",
		header: []any{"받은 총액", "받은 건수", "받은 평균", "보낸 총액", "보낸 건수", "보낸 평균", "전체 금액", "전체 건수", "전체 평균"},
		rows: [][]any{{
			amount(o.ReceivedTotal), o.ReceivedCount, amount(o.ReceivedAvg),
			amount(o.SentTotal), o.SentCount, amount(o.SentAvg),
			amount(o.TotalAmount), o.TotalCount, amount(o.AvgAmount),
		}},
	}}

	yearly := statsBlock{title: "연도별", header: []any{"연도", "받은 총액", "받은 건수", "보낸 총액", "보낸 건수", "차액"}}
	for _, y := range d.Yearly {
		yearly.rows = append(yearly.rows, []any{
			y.Year, amount(y.ReceivedTotal), y.ReceivedCount, amount(y.SentTotal), y.SentCount, amount(y.Difference),
		})
	}

	monthly := statsBlock{title: "월별", header: []any{"연도", "월", "받은 총액", "받은 건수", "보낸 총액", "보낸 건수"}}
	for _, m := range d.Monthly {
		monthly.rows = append(monthly.rows, []any{
			m.Year, m.Month, amount(m.ReceivedTotal), m.ReceivedCount, amount(m.SentTotal), m.SentCount,
		})
	}

	people := statsBlock{title: "상대별", header: []any{"이름", "관계", "받은 총액", "받은 건수", "보낸 총액", "보낸 건수", "잔액", "최근 행사일", "최근 행사"}}
	for _, c := range d.ByCounterparty {
		people.rows = append(people.rows, []any{
			c.Name, c.Relation, amount(c.ReceivedTotal), c.ReceivedCount, amount(c.SentTotal), c.SentCount,
			amount(c.Balance), c.LastEventDate.String(), c.LastEventType,
		})
	}

	events := statsBlock{title: "행사 유형별", header: []any{"행사 유형", "받은 총액", "받은 건수", "보낸 총액", "보낸 건수", "받은 평균", "보낸 평균"}}
	for _, e := range d.ByEventType {
		events.rows = append(events.rows, []any{
			e.EventType, amount(e.ReceivedTotal), e.ReceivedCount, amount(e.SentTotal), e.SentCount,
			amount(e.AverageReceived), amount(e.AverageSent),
		})
	}

	relations := statsBlock{title: "관계별", header: []any{"관계", "받은 총액", "받은 건수", "보낸 총액", "보낸 건수", "받은 평균", "보낸 평균"}}
	for _, r := range d.ByRelation {
		relations.rows = append(relations.rows, []any{
			r.Relation, amount(r.ReceivedTotal), r.ReceivedCount, amount(r.SentTotal), r.SentCount,
			amount(r.AverageReceived), amount(r.AverageSent),
		})
	}

	return append(blocks, yearly, monthly, people, events, relations)
}

// amount keeps decimals exact on the way to the sheet.
func amount(d decimal.Decimal) string {
	return d.String()
}

func ownerSheet(prefix string, ownerID int64) string {
	return prefix + strconv.FormatInt(ownerID, 10)
}
