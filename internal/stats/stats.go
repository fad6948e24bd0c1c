// Package stats computes the aggregation views over one owner's entries.
//
// Every function is pure: it takes a snapshot of entries and returns freshly
// computed results. RECEIVED and SENT amounts are accumulated in separate
// decimal totals, and derived values (difference, balance, averages) are
// computed from those totals afterwards.
package stats

import (
	"cmp"
	"slices"
	"strings"

	"giftledger/internal/core"

	"github.com/shopspring/decimal"
)

// AveragePlaces is the number of decimal places kept by every average.
const AveragePlaces = 2

type tally struct {
	receivedTotal decimal.Decimal
	receivedCount int64
	sentTotal     decimal.Decimal
	sentCount     int64
}

func (t *tally) add(e core.Entry) {
	switch e.TransactionType {
	case core.Received:
		t.receivedTotal = t.receivedTotal.Add(e.Amount)
		t.receivedCount++
	case core.Sent:
		t.sentTotal = t.sentTotal.Add(e.Amount)
		t.sentCount++
	}
}

func (t tally) combined() decimal.Decimal {
	return t.receivedTotal.Add(t.sentTotal)
}

// Average divides total by count, rounding half away from zero to two places.
// A zero count yields zero.
func Average(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(count), AveragePlaces)
}

// Overall summarises all entries.
func Overall(entries []core.Entry) core.OverallStats {
	var t tally
	for _, e := range entries {
		t.add(e)
	}
	total := t.combined()
	count := t.receivedCount + t.sentCount
	return core.OverallStats{
		ReceivedTotal: t.receivedTotal,
		ReceivedCount: t.receivedCount,
		ReceivedAvg:   Average(t.receivedTotal, t.receivedCount),
		SentTotal:     t.sentTotal,
		SentCount:     t.sentCount,
		SentAvg:       Average(t.sentTotal, t.sentCount),
		TotalAmount:   total,
		TotalCount:    count,
		AvgAmount:     Average(total, count),
	}
}

// Yearly groups by calendar year of the event date, newest year first.
func Yearly(entries []core.Entry) []core.YearlyStats {
	groups := map[int]*tally{}
	for _, e := range entries {
		y := e.EventDate.Year()
		if groups[y] == nil {
			groups[y] = &tally{}
		}
		groups[y].add(e)
	}
	out := make([]core.YearlyStats, 0, len(groups))
	for y, t := range groups {
		out = append(out, core.YearlyStats{
			Year:          y,
			ReceivedTotal: t.receivedTotal,
			ReceivedCount: t.receivedCount,
			SentTotal:     t.sentTotal,
			SentCount:     t.sentCount,
			Difference:    t.receivedTotal.Sub(t.sentTotal),
		})
	}
	slices.SortFunc(out, func(a, b core.YearlyStats) int {
		return cmp.Compare(b.Year, a.Year)
	})
	return out
}

type yearMonth struct {
	year, month int
}

// Monthly groups entries dated on or after since by (year, month), newest first.
func Monthly(entries []core.Entry, since core.Date) []core.MonthlyStats {
	groups := map[yearMonth]*tally{}
	for _, e := range entries {
		if e.EventDate.Before(since) {
			continue
		}
		k := yearMonth{e.EventDate.Year(), e.EventDate.Month()}
		if groups[k] == nil {
			groups[k] = &tally{}
		}
		groups[k].add(e)
	}
	out := make([]core.MonthlyStats, 0, len(groups))
	for k, t := range groups {
		out = append(out, core.MonthlyStats{
			Year:          k.year,
			Month:         k.month,
			ReceivedTotal: t.receivedTotal,
			ReceivedCount: t.receivedCount,
			SentTotal:     t.sentTotal,
			SentCount:     t.sentCount,
		})
	}
	slices.SortFunc(out, func(a, b core.MonthlyStats) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	return out
}

type counterpartyKey struct {
	name, relation string
}

type counterpartyGroup struct {
	tally
	last core.Entry
}

// ByCounterparty groups by (name, relation). Blank relations share one group.
// Ordered by balance descending, then name and relation ascending.
func ByCounterparty(entries []core.Entry) []core.CounterpartyStats {
	groups := map[counterpartyKey]*counterpartyGroup{}
	for _, e := range entries {
		k := counterpartyKey{e.CounterpartyName, strings.TrimSpace(e.Relation)}
		g := groups[k]
		if g == nil {
			g = &counterpartyGroup{last: e}
			groups[k] = g
		} else if laterThan(e, g.last) {
			g.last = e
		}
		g.add(e)
	}
	out := make([]core.CounterpartyStats, 0, len(groups))
	for k, g := range groups {
		out = append(out, core.CounterpartyStats{
			Name:          k.name,
			Relation:      k.relation,
			ReceivedTotal: g.receivedTotal,
			ReceivedCount: g.receivedCount,
			SentTotal:     g.sentTotal,
			SentCount:     g.sentCount,
			Balance:       g.receivedTotal.Sub(g.sentTotal),
			LastEventDate: g.last.EventDate,
			LastEventType: g.last.EventType,
		})
	}
	slices.SortFunc(out, func(a, b core.CounterpartyStats) int {
		if c := b.Balance.Cmp(a.Balance); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Relation, b.Relation)
	})
	return out
}

// laterThan orders by event date, then id for entries on the same date.
func laterThan(a, b core.Entry) bool {
	if !a.EventDate.Equal(b.EventDate.Time) {
		return a.EventDate.After(b.EventDate.Time)
	}
	return a.ID > b.ID
}

type keyedTally struct {
	key string
	tally
}

func groupBy(entries []core.Entry, key func(core.Entry) string) []keyedTally {
	idx := map[string]int{}
	var out []keyedTally
	for _, e := range entries {
		k := key(e)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, keyedTally{key: k})
		}
		out[i].add(e)
	}
	slices.SortFunc(out, func(a, b keyedTally) int {
		if c := b.combined().Cmp(a.combined()); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	return out
}

// ByEventType groups by event type, ordered by received+sent descending.
func ByEventType(entries []core.Entry) []core.EventTypeStats {
	groups := groupBy(entries, func(e core.Entry) string { return e.EventType })
	out := make([]core.EventTypeStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, core.EventTypeStats{
			EventType:       g.key,
			ReceivedTotal:   g.receivedTotal,
			ReceivedCount:   g.receivedCount,
			SentTotal:       g.sentTotal,
			SentCount:       g.sentCount,
			AverageReceived: Average(g.receivedTotal, g.receivedCount),
			AverageSent:     Average(g.sentTotal, g.sentCount),
		})
	}
	return out
}

// ByRelation groups by relation; missing or blank relations fall into
// core.UnspecifiedRelation.
func ByRelation(entries []core.Entry) []core.RelationStats {
	groups := groupBy(entries, RelationKey)
	out := make([]core.RelationStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, core.RelationStats{
			Relation:        g.key,
			ReceivedTotal:   g.receivedTotal,
			ReceivedCount:   g.receivedCount,
			SentTotal:       g.sentTotal,
			SentCount:       g.sentCount,
			AverageReceived: Average(g.receivedTotal, g.receivedCount),
			AverageSent:     Average(g.sentTotal, g.sentCount),
		})
	}
	return out
}

// RelationKey maps an entry to its by-relation bucket.
func RelationKey(e core.Entry) string {
	if r := strings.TrimSpace(e.Relation); r != "" {
		return r
	}
	return core.UnspecifiedRelation
}

// All computes every view from one snapshot.
func All(entries []core.Entry, since core.Date) core.Dashboard {
	return core.Dashboard{
		Overall:        Overall(entries),
		Yearly:         Yearly(entries),
		Monthly:        Monthly(entries, since),
		ByCounterparty: ByCounterparty(entries),
		ByEventType:    ByEventType(entries),
		ByRelation:     ByRelation(entries),
	}
}
