// Package ledgertest holds the behaviour every ledger.Store must share.
package ledgertest

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"giftledger/internal/core"
	"giftledger/internal/ledger"

	"github.com/shopspring/decimal"
)

// Entry builds an unsaved entry for tests.
func Entry(ownerID int64, date core.Date, tt core.TransactionType, name string, amount int64) *core.Entry {
	return &core.Entry{
		OwnerID:          ownerID,
		EventDate:        date,
		EventType:        "결혼식",
		TransactionType:  tt,
		CounterpartyName: name,
		Relation:         "친구",
		Amount:           decimal.NewFromInt(amount),
	}
}

// Run exercises a fresh store from newStore against the shared contract.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("OwnerIsolation", func(t *testing.T) { testOwnerIsolation(t, newStore(t)) })
	t.Run("UnknownOwner", func(t *testing.T) { testUnknownOwner(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, newStore(t)) })
	t.Run("ListPaging", func(t *testing.T) { testListPaging(t, newStore(t)) })
	t.Run("BatchAtomicVisibility", func(t *testing.T) { testBatchVisibility(t, newStore(t)) })
}

func mustOwner(t *testing.T, s ledger.Store, name string) core.Owner {
	t.Helper()
	o, err := s.CreateOwner(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateOwner: %v", err)
	}
	return o
}

func testCreateAndGet(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "owner")
	if ok, err := s.OwnerExists(ctx, o.ID); err != nil || !ok {
		t.Fatalf("OwnerExists = %v, %v", ok, err)
	}

	e := Entry(o.ID, core.NewDate(2024, 1, 1), core.Received, "홍길동", 100000)
	e.Contact = "010-1234-5678"
	e.Memo = "대학 동기"
	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if e.ID == 0 || e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Fatalf("store did not assign id/timestamps: %+v", e)
	}

	got, err := s.GetEntry(ctx, o.ID, e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.CounterpartyName != "홍길동" || !got.Amount.Equal(decimal.NewFromInt(100000)) ||
		got.EventDate.String() != "2024-01-01" || got.TransactionType != core.Received ||
		got.Relation != "친구" || got.Contact != "010-1234-5678" || got.Memo != "대학 동기" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func testOwnerIsolation(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	a := mustOwner(t, s, "a")
	b := mustOwner(t, s, "b")
	e := Entry(a.ID, core.NewDate(2024, 1, 1), core.Received, "홍길동", 1000)
	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetEntry(ctx, b.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get as other owner: %v", err)
	}
	foreign := *e
	foreign.OwnerID = b.ID
	foreign.CounterpartyName = "변경"
	if err := s.UpdateEntry(ctx, &foreign); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update as other owner: %v", err)
	}
	if err := s.DeleteEntry(ctx, b.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete as other owner: %v", err)
	}
	page, err := s.ListEntries(ctx, b.ID, core.ListQuery{Size: 10})
	if err != nil || page.TotalItems != 0 {
		t.Errorf("list as other owner: total=%d err=%v", page.TotalItems, err)
	}

	got, err := s.GetEntry(ctx, a.ID, e.ID)
	if err != nil || got.CounterpartyName != "홍길동" {
		t.Errorf("entry changed by foreign owner: %+v %v", got, err)
	}
}

func testUnknownOwner(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	if ok, err := s.OwnerExists(ctx, 9999); err != nil || ok {
		t.Fatalf("OwnerExists(9999) = %v, %v", ok, err)
	}
	batch := []*core.Entry{Entry(9999, core.NewDate(2024, 1, 1), core.Received, "x", 1)}
	if err := s.CreateEntries(ctx, 9999, batch); !errors.Is(err, core.ErrOwnerNotFound) {
		t.Fatalf("CreateEntries unknown owner: %v", err)
	}
}

func testUpdate(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "owner")
	e := Entry(o.ID, core.NewDate(2024, 1, 1), core.Received, "홍길동", 1000)
	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	created := e.CreatedAt

	e.TransactionType = core.Sent
	e.Amount = decimal.NewFromInt(2000)
	e.Relation = ""
	if err := s.UpdateEntry(ctx, e); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	got, err := s.GetEntry(ctx, o.ID, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TransactionType != core.Sent || !got.Amount.Equal(decimal.NewFromInt(2000)) || got.Relation != "" {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("createdAt changed: %v -> %v", created, got.CreatedAt)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", got.UpdatedAt, got.CreatedAt)
	}

	missing := *e
	missing.ID = e.ID + 1000
	if err := s.UpdateEntry(ctx, &missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}
}

func testDelete(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "owner")
	e := Entry(o.ID, core.NewDate(2024, 1, 1), core.Received, "홍길동", 1000)
	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, o.ID, e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, err := s.GetEntry(ctx, o.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if err := s.DeleteEntry(ctx, o.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func seedList(t *testing.T, s ledger.Store, ownerID int64) {
	t.Helper()
	batch := []*core.Entry{
		Entry(ownerID, core.NewDate(2024, 1, 1), core.Received, "홍길동", 100),
		Entry(ownerID, core.NewDate(2024, 3, 1), core.Sent, "김철수", 200),
		Entry(ownerID, core.NewDate(2024, 3, 1), core.Received, "홍길순", 300),
		Entry(ownerID, core.NewDate(2023, 12, 1), core.Sent, "이영희", 400),
		Entry(ownerID, core.NewDate(2024, 2, 1), core.Received, "Hong", 500),
	}
	if err := s.CreateEntries(context.Background(), ownerID, batch); err != nil {
		t.Fatalf("CreateEntries: %v", err)
	}
}

func names(p core.Page) []string {
	out := make([]string, len(p.Items))
	for i, e := range p.Items {
		out[i] = e.CounterpartyName
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testListFilters(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "owner")
	seedList(t, s, o.ID)

	cases := []struct {
		name string
		q    core.ListQuery
		want []string
	}{
		{"all newest first, id desc on ties", core.ListQuery{Size: 10}, []string{"홍길순", "김철수", "Hong", "홍길동", "이영희"}},
		{"received only", core.ListQuery{Size: 10, Type: core.Received}, []string{"홍길순", "Hong", "홍길동"}},
		{"search", core.ListQuery{Size: 10, Search: "홍길"}, []string{"홍길순", "홍길동"}},
		{"search is case sensitive", core.ListQuery{Size: 10, Search: "hong"}, []string{}},
		{"search and type", core.ListQuery{Size: 10, Search: "홍길", Type: core.Sent}, []string{}},
	}
	for _, tc := range cases {
		page, err := s.ListEntries(ctx, o.ID, tc.q)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := names(page); !equal(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		if page.TotalItems != int64(len(tc.want)) {
			t.Errorf("%s: total = %d", tc.name, page.TotalItems)
		}
	}
}

func testListPaging(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "owner")
	seedList(t, s, o.ID)

	page, err := s.ListEntries(ctx, o.ID, core.ListQuery{Page: 1, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(page); !equal(got, []string{"Hong", "홍길동"}) {
		t.Errorf("page 1: %v", got)
	}
	if page.TotalItems != 5 || page.TotalPages != 3 {
		t.Errorf("totals: items=%d pages=%d", page.TotalItems, page.TotalPages)
	}

	page, err = s.ListEntries(ctx, o.ID, core.ListQuery{Page: 7, Size: 2})
	if err != nil {
		t.Fatalf("out of range page must not fail: %v", err)
	}
	if len(page.Items) != 0 || page.TotalItems != 5 {
		t.Errorf("out of range page: items=%d total=%d", len(page.Items), page.TotalItems)
	}

	page, err = s.ListEntries(ctx, o.ID, core.ListQuery{Page: math.MaxInt / 10, Size: 20})
	if err != nil {
		t.Fatalf("huge page must not fail: %v", err)
	}
	if len(page.Items) != 0 || page.TotalItems != 5 {
		t.Errorf("huge page: items=%d total=%d", len(page.Items), page.TotalItems)
	}
}

func testBatchVisibility(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "owner")
	const batches, size = 4, 25

	var wg sync.WaitGroup
	errs := make(chan error, batches)
	for b := 0; b < batches; b++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			es := make([]*core.Entry, size)
			for i := range es {
				es[i] = Entry(o.ID, core.NewDate(2024, 1, 1+i%28), core.Received, "batch", 10)
			}
			errs <- s.CreateEntries(ctx, o.ID, es)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		snap, err := s.SnapshotEntries(ctx, o.ID)
		if err != nil {
			t.Fatalf("SnapshotEntries: %v", err)
		}
		if len(snap)%size != 0 {
			t.Fatalf("observed partial batch: %d entries", len(snap))
		}
	}
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("CreateEntries: %v", err)
		}
	}
	snap, _ := s.SnapshotEntries(ctx, o.ID)
	if len(snap) != batches*size {
		t.Fatalf("expected %d entries, got %d", batches*size, len(snap))
	}
}
