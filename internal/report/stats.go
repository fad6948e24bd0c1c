package report

import (
	"fmt"
	"io"

	"giftledger/internal/core"
)

func Overall(w io.Writer, s core.OverallStats) error {
	t := newTable(w, "", "합계", "건수", "평균")
	t.row("받음", Amount(s.ReceivedTotal), Count(s.ReceivedCount), Amount(s.ReceivedAvg))
	t.row("보냄", Amount(s.SentTotal), Count(s.SentCount), Amount(s.SentAvg))
	t.row("전체", Amount(s.TotalAmount), Count(s.TotalCount), Amount(s.AvgAmount))
	return t.flush()
}

func Yearly(w io.Writer, rows []core.YearlyStats) error {
	t := newTable(w, "연도", "받은 금액", "받은 건수", "보낸 금액", "보낸 건수", "차액")
	for _, r := range rows {
		t.row(fmt.Sprint(r.Year), Amount(r.ReceivedTotal), Count(r.ReceivedCount),
			Amount(r.SentTotal), Count(r.SentCount), Amount(r.Difference))
	}
	return t.flush()
}

func Monthly(w io.Writer, rows []core.MonthlyStats) error {
	t := newTable(w, "월", "받은 금액", "받은 건수", "보낸 금액", "보낸 건수")
	for _, r := range rows {
		t.row(fmt.Sprintf("%04d-%02d", r.Year, r.Month), Amount(r.ReceivedTotal), Count(r.ReceivedCount),
			Amount(r.SentTotal), Count(r.SentCount))
	}
	return t.flush()
}

func ByCounterparty(w io.Writer, rows []core.CounterpartyStats) error {
	t := newTable(w, "이름", "관계", "받은 금액", "받은 건수", "보낸 금액", "보낸 건수", "잔액", "최근 행사")
	for _, r := range rows {
		t.row(r.Name, dash(r.Relation), Amount(r.ReceivedTotal), Count(r.ReceivedCount),
			Amount(r.SentTotal), Count(r.SentCount), Amount(r.Balance),
			fmt.Sprintf("%s %s", r.LastEventDate, r.LastEventType))
	}
	return t.flush()
}

func ByEventType(w io.Writer, rows []core.EventTypeStats) error {
	t := newTable(w, "행사 유형", "받은 금액", "받은 건수", "보낸 금액", "보낸 건수", "평균 받음", "평균 보냄")
	for _, r := range rows {
		t.row(r.EventType, Amount(r.ReceivedTotal), Count(r.ReceivedCount), Amount(r.SentTotal),
			Count(r.SentCount), Amount(r.AverageReceived), Amount(r.AverageSent))
	}
	return t.flush()
}

func ByRelation(w io.Writer, rows []core.RelationStats) error {
	t := newTable(w, "관계", "받은 금액", "받은 건수", "보낸 금액", "보낸 건수", "평균 받음", "평균 보냄")
	for _, r := range rows {
		t.row(r.Relation, Amount(r.ReceivedTotal), Count(r.ReceivedCount), Amount(r.SentTotal),
			Count(r.SentCount), Amount(r.AverageReceived), Amount(r.AverageSent))
	}
	return t.flush()
}

// Dashboard prints every view under a heading, separated by blank lines.
func Dashboard(w io.Writer, d core.Dashboard) error {
	sections := []struct {
		title  string
		render func() error
	}{
		{"전체 통계", func() error { return Overall(w, d.Overall) }},
		{"연도별", func() error { return Yearly(w, d.Yearly) }},
		{"월별", func() error { return Monthly(w, d.Monthly) }},
		{"상대별", func() error { return ByCounterparty(w, d.ByCounterparty) }},
		{"행사 유형별", func() error { return ByEventType(w, d.ByEventType) }},
		{"관계별", func() error { return ByRelation(w, d.ByRelation) }},
	}
	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%s]\n", s.title); err != nil {
			return err
		}
		if err := s.render(); err != nil {
			return err
		}
	}
	return nil
}
