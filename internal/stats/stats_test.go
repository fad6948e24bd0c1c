package stats

import (
	"testing"

	"giftledger/internal/core"

	"github.com/shopspring/decimal"
)

func entry(id int64, date core.Date, eventType string, tt core.TransactionType, name, relation string, amount int64) core.Entry {
	return core.Entry{
		ID:               id,
		OwnerID:          1,
		EventDate:        date,
		EventType:        eventType,
		TransactionType:  tt,
		CounterpartyName: name,
		Relation:         relation,
		Amount:           decimal.NewFromInt(amount),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func TestOverallWorkedExample(t *testing.T) {
	entries := []core.Entry{
		entry(1, core.NewDate(2024, 1, 1), "WEDDING", core.Received, "a", "", 100000),
		entry(2, core.NewDate(2024, 1, 1), "WEDDING", core.Sent, "b", "", 50000),
	}
	got := Overall(entries)
	assertDec(t, "receivedTotal", got.ReceivedTotal, "100000")
	assertDec(t, "receivedAvg", got.ReceivedAvg, "100000")
	assertDec(t, "sentTotal", got.SentTotal, "50000")
	assertDec(t, "sentAvg", got.SentAvg, "50000")
	assertDec(t, "totalAmount", got.TotalAmount, "150000")
	assertDec(t, "avgAmount", got.AvgAmount, "75000")
	if got.ReceivedCount != 1 || got.SentCount != 1 || got.TotalCount != 2 {
		t.Errorf("counts = %d/%d/%d", got.ReceivedCount, got.SentCount, got.TotalCount)
	}
}

func TestOverallEmpty(t *testing.T) {
	got := Overall(nil)
	assertDec(t, "receivedAvg", got.ReceivedAvg, "0")
	assertDec(t, "sentAvg", got.SentAvg, "0")
	assertDec(t, "avgAmount", got.AvgAmount, "0")
	if got.TotalCount != 0 {
		t.Errorf("totalCount = %d", got.TotalCount)
	}
}

func TestAverageRounding(t *testing.T) {
	cases := []struct {
		total string
		count int64
		want  string
	}{
		{"100000", 3, "33333.33"},
		{"200000", 3, "66666.67"},
		{"5", 8, "0.63"},
		{"10", 0, "0"},
	}
	for _, tc := range cases {
		assertDec(t, tc.total+"/"+decimal.NewFromInt(tc.count).String(), Average(dec(tc.total), tc.count), tc.want)
	}
}

func mixedLedger() []core.Entry {
	return []core.Entry{
		entry(1, core.NewDate(2023, 5, 10), "결혼식", core.Received, "홍길동", "친구", 100000),
		entry(2, core.NewDate(2023, 11, 2), "장례식", core.Sent, "홍길동", "친구", 50000),
		entry(3, core.NewDate(2024, 2, 14), "결혼식", core.Sent, "김철수", "", 70000),
		entry(4, core.NewDate(2024, 2, 20), "돌잔치", core.Received, "이영희", "직장동료", 30000),
		entry(5, core.NewDate(2024, 6, 1), "결혼식", core.Received, "김철수", "  ", 200000),
		entry(6, core.NewDate(2024, 6, 1), "개업", core.Received, "홍길동", "친구", 10000),
	}
}

func TestOverallInvariants(t *testing.T) {
	entries := mixedLedger()
	o := Overall(entries)
	if o.TotalCount != o.ReceivedCount+o.SentCount {
		t.Errorf("totalCount %d != %d + %d", o.TotalCount, o.ReceivedCount, o.SentCount)
	}
	if !o.TotalAmount.Equal(o.ReceivedTotal.Add(o.SentTotal)) {
		t.Errorf("totalAmount %s != received + sent", o.TotalAmount)
	}

	var received, sent decimal.Decimal
	for _, y := range Yearly(entries) {
		received = received.Add(y.ReceivedTotal)
		sent = sent.Add(y.SentTotal)
	}
	if !received.Equal(o.ReceivedTotal) || !sent.Equal(o.SentTotal) {
		t.Errorf("yearly sums %s/%s differ from overall %s/%s", received, sent, o.ReceivedTotal, o.SentTotal)
	}
}

func TestYearly(t *testing.T) {
	got := Yearly(mixedLedger())
	if len(got) != 2 || got[0].Year != 2024 || got[1].Year != 2023 {
		t.Fatalf("unexpected years: %+v", got)
	}
	assertDec(t, "2024 received", got[0].ReceivedTotal, "240000")
	assertDec(t, "2024 sent", got[0].SentTotal, "70000")
	assertDec(t, "2024 difference", got[0].Difference, "170000")
	assertDec(t, "2023 difference", got[1].Difference, "50000")
}

func TestMonthly(t *testing.T) {
	since := core.NewDate(2024, 6, 1).MinusMonths(4) // 2024-02-01
	got := Monthly(mixedLedger(), since)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %+v", got)
	}
	if got[0].Year != 2024 || got[0].Month != 6 || got[1].Month != 2 {
		t.Fatalf("unexpected ordering: %+v", got)
	}
	if got[0].ReceivedCount != 2 || got[1].ReceivedCount != 1 || got[1].SentCount != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
}

func TestMonthlyIncludesBoundaryDay(t *testing.T) {
	entries := []core.Entry{entry(1, core.NewDate(2024, 2, 1), "x", core.Received, "a", "", 10)}
	if got := Monthly(entries, core.NewDate(2024, 2, 1)); len(got) != 1 {
		t.Fatalf("entry on since date must be included, got %+v", got)
	}
	if got := Monthly(entries, core.NewDate(2024, 2, 2)); len(got) != 0 {
		t.Fatalf("entry before since date must be excluded, got %+v", got)
	}
}

func TestByCounterparty(t *testing.T) {
	got := ByCounterparty(mixedLedger())
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %+v", got)
	}
	// 김철수 with "" and "  " relations share one group: 200000 - 70000
	if got[0].Name != "김철수" || got[0].Relation != "" {
		t.Fatalf("first group = %+v", got[0])
	}
	assertDec(t, "김철수 balance", got[0].Balance, "130000")
	if got[0].LastEventDate.String() != "2024-06-01" || got[0].LastEventType != "결혼식" {
		t.Errorf("김철수 last event = %s %s", got[0].LastEventDate, got[0].LastEventType)
	}

	if got[1].Name != "홍길동" {
		t.Fatalf("second group = %+v", got[1])
	}
	assertDec(t, "홍길동 balance", got[1].Balance, "60000")
	if got[1].LastEventType != "개업" {
		t.Errorf("홍길동 last type = %s", got[1].LastEventType)
	}
}

func TestByCounterpartyLastEventTieBreak(t *testing.T) {
	d := core.NewDate(2024, 3, 3)
	entries := []core.Entry{
		entry(9, d, "장례식", core.Received, "a", "", 10),
		entry(4, d, "결혼식", core.Received, "a", "", 10),
		entry(12, d, "개업", core.Sent, "a", "", 10),
		entry(20, core.NewDate(2024, 3, 2), "돌잔치", core.Sent, "a", "", 10),
	}
	got := ByCounterparty(entries)
	if len(got) != 1 || got[0].LastEventType != "개업" {
		t.Fatalf("expected highest id on latest date, got %+v", got)
	}
}

func TestByCounterpartyOrdersTiesByName(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	entries := []core.Entry{
		entry(1, d, "x", core.Received, "나", "", 10),
		entry(2, d, "x", core.Received, "가", "", 10),
		entry(3, d, "x", core.Received, "가", "친구", 10),
	}
	got := ByCounterparty(entries)
	if got[0].Name != "가" || got[0].Relation != "" || got[1].Relation != "친구" || got[2].Name != "나" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestByEventType(t *testing.T) {
	got := ByEventType(mixedLedger())
	if len(got) != 4 || got[0].EventType != "결혼식" {
		t.Fatalf("unexpected groups: %+v", got)
	}
	assertDec(t, "결혼식 averageReceived", got[0].AverageReceived, "150000")
	assertDec(t, "결혼식 averageSent", got[0].AverageSent, "70000")
	last := got[len(got)-1]
	if last.EventType != "개업" {
		t.Errorf("smallest group = %s", last.EventType)
	}
	assertDec(t, "개업 averageSent", last.AverageSent, "0")
}

func TestByRelationUnspecifiedBucket(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	entries := []core.Entry{
		entry(1, d, "x", core.Received, "a", "", 100),
		entry(2, d, "x", core.Received, "b", "   ", 200),
		entry(3, d, "x", core.Sent, "c", "친구", 50),
	}
	got := ByRelation(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", got)
	}
	if got[0].Relation != core.UnspecifiedRelation || got[0].ReceivedCount != 2 {
		t.Fatalf("unspecified bucket = %+v", got[0])
	}
	assertDec(t, "unspecified averageReceived", got[0].AverageReceived, "150")
}

func TestAllUsesOneSnapshot(t *testing.T) {
	entries := mixedLedger()
	d := All(entries, core.NewDate(2000, 1, 1))
	if d.Overall.TotalCount != int64(len(entries)) {
		t.Errorf("overall count = %d", d.Overall.TotalCount)
	}
	if len(d.Monthly) != 4 || len(d.Yearly) != 2 || len(d.ByRelation) != 3 {
		t.Errorf("unexpected view sizes: monthly=%d yearly=%d relation=%d", len(d.Monthly), len(d.Yearly), len(d.ByRelation))
	}
}
