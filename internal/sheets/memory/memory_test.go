package memory

import (
	"context"
	"testing"
)

func TestWriteRequiresSheet(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.WriteRange(ctx, "'Stats 1'!A1:B1", [][]any{{"a", "b"}}); err == nil {
		t.Fatal("expected error writing to a missing sheet")
	}
	if err := s.EnsureSheet(ctx, "Stats 1"); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRange(ctx, "'Stats 1'!A1:B1", [][]any{{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadRange(ctx, "'Stats 1'!A1:B1")
	if err != nil || len(got) != 1 || got[0][1] != "b" {
		t.Fatalf("unexpected read: %v, %v", got, err)
	}
	if s.Writes() != 1 {
		t.Errorf("writes = %d", s.Writes())
	}
}

func TestClearRangeDropsWholeSheet(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Put("'A'!A1:A1", [][]any{{1}})
	s.Put("'A'!A3:A3", [][]any{{2}})
	s.Put("'B'!A1:A1", [][]any{{3}})

	if err := s.ClearRange(ctx, "'A'"); err != nil {
		t.Fatal(err)
	}
	got := s.Ranges()
	if len(got) != 1 || got[0] != "'B'!A1:A1" {
		t.Fatalf("ranges after clear = %v", got)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	s := New()
	s.Put("r", [][]any{{"x"}})
	got, _ := s.ReadRange(context.Background(), "r")
	got[0][0] = "mutated"
	again, _ := s.ReadRange(context.Background(), "r")
	if again[0][0] != "x" {
		t.Fatal("ReadRange leaked internal state")
	}
}
