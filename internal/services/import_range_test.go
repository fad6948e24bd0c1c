package services

import (
	"context"
	"errors"
	"testing"

	"giftledger/internal/core"
	sheetmem "giftledger/internal/sheets/memory"
)

func TestImportRange(t *testing.T) {
	store, owner := newStoreWithOwner(t)
	pub := &fakePublisher{}
	svc := NewImportService(store, pub, nil)

	src := sheetmem.New()
	src.Put("Gifts!A5:G", [][]any{
		{"행사 날짜", "행사 유형", "이름", "관계", "금액", "연락처", "메모"},
		{"2024-05-18", "결혼식", "홍길동", "친구", float64(100000), "010-1234-5678"},
		{"2024-06-01", "돌잔치", "김철수", "", "50,000"},
	})

	res, err := svc.ImportRange(context.Background(), owner, src, "Gifts!A5:G")
	if err != nil {
		t.Fatalf("ImportRange: %v", err)
	}
	if res.SuccessCount != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if events := pub.Events(); len(events) != 1 || events[0].EntryCount != 2 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestImportRange_RowNumbersFollowSheet(t *testing.T) {
	store, owner := newStoreWithOwner(t)
	svc := NewImportService(store, nil, nil)

	src := sheetmem.New()
	src.Put("Gifts!A5:G", [][]any{
		{"header"},
		{"2024-05-18", "결혼식", "홍길동", "", float64(100000)},
		{"2024-05-19", "결혼식", "김철수", "", "abc"},
	})

	_, err := svc.ImportRange(context.Background(), owner, src, "Gifts!A5:G")
	var ie *core.ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if len(ie.Errors) != 1 || ie.Errors[0].Row != 7 {
		t.Fatalf("errors = %+v", ie.Errors)
	}
	if snap, _ := store.SnapshotEntries(context.Background(), owner); len(snap) != 0 {
		t.Fatalf("partial import stored %d entries", len(snap))
	}
}

func TestImportRange_Unreadable(t *testing.T) {
	store, owner := newStoreWithOwner(t)
	svc := NewImportService(store, nil, nil)

	_, err := svc.ImportRange(context.Background(), owner, sheetmem.New(), "Missing!A1:G")
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "range" {
		t.Fatalf("expected range validation error, got %v", err)
	}

	if _, err := svc.ImportRange(context.Background(), owner+100, sheetmem.New(), "Missing!A1:G"); !errors.Is(err, core.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}
