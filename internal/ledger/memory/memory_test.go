package memory

import (
	"context"
	"testing"

	"giftledger/internal/core"
	"giftledger/internal/ledger"
	"giftledger/internal/ledger/ledgertest"
)

func TestStoreContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Store { return New() })
}

func TestCreateOwnerRequiresName(t *testing.T) {
	if _, err := New().CreateOwner(context.Background(), "  "); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	o, _ := s.CreateOwner(ctx, "owner")
	e := ledgertest.Entry(o.ID, core.NewDate(2024, 1, 1), core.Received, "홍길동", 10)
	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.CounterpartyName = "mutated"

	got, _ := s.GetEntry(ctx, o.ID, e.ID)
	if got.CounterpartyName != "홍길동" {
		t.Fatalf("caller mutation leaked into store: %q", got.CounterpartyName)
	}
}
