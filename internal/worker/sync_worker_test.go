package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"giftledger/internal/cache"
	"giftledger/internal/core"
)

type fakeSyncer struct {
	mu       sync.Mutex
	enqueued []int64
	synced   []int64
	failFor  map[int64]bool
}

func (f *fakeSyncer) Enqueue(ownerID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, ownerID)
}

func (f *fakeSyncer) Sync(_ context.Context, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[ownerID] {
		return errors.New("sheets unavailable")
	}
	f.synced = append(f.synced, ownerID)
	return nil
}

func event(id string, kind core.EventKind, owner int64) core.LedgerEvent {
	return core.LedgerEvent{ID: id, Kind: kind, OwnerID: owner, Timestamp: time.Now()}
}

func TestHandleEventEnqueuesOwner(t *testing.T) {
	tests := []struct {
		name string
		ev   core.LedgerEvent
		want []int64
	}{
		{"created", event("e1", core.EventEntryCreated, 1), []int64{1}},
		{"updated", event("e2", core.EventEntryUpdated, 2), []int64{2}},
		{"deleted", event("e3", core.EventEntryDeleted, 3), []int64{3}},
		{"batch", event("e4", core.EventBatchImported, 4), []int64{4}},
		{"unknown kind", event("e5", core.EventKind("owner_renamed"), 5), nil},
		{"no owner", event("e6", core.EventEntryCreated, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSyncer{}
			w := NewSyncWorker(s, nil, nil)
			if err := w.HandleEvent(context.Background(), tt.ev); err != nil {
				t.Fatalf("HandleEvent: %v", err)
			}
			if len(s.enqueued) != len(tt.want) {
				t.Fatalf("enqueued %v, want %v", s.enqueued, tt.want)
			}
			for i := range tt.want {
				if s.enqueued[i] != tt.want[i] {
					t.Errorf("enqueued %v, want %v", s.enqueued, tt.want)
				}
			}
		})
	}
}

func TestHandleEventSkipsRedelivery(t *testing.T) {
	s := &fakeSyncer{}
	w := NewSyncWorker(s, cache.NewLRUCache[struct{}](100, time.Minute), nil)
	ctx := context.Background()

	ev := event("evt-1", core.EventBatchImported, 9)
	for i := 0; i < 3; i++ {
		if err := w.HandleEvent(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.HandleEvent(ctx, event("evt-2", core.EventEntryCreated, 9)); err != nil {
		t.Fatal(err)
	}
	if len(s.enqueued) != 2 {
		t.Errorf("enqueued %v, want two distinct events", s.enqueued)
	}
}

func TestHandleEventWithoutIDIsNotDeduped(t *testing.T) {
	s := &fakeSyncer{}
	w := NewSyncWorker(s, cache.NewLRUCache[struct{}](100, time.Minute), nil)
	ev := event("", core.EventEntryCreated, 1)
	w.HandleEvent(context.Background(), ev)
	w.HandleEvent(context.Background(), ev)
	if len(s.enqueued) != 2 {
		t.Errorf("enqueued %v", s.enqueued)
	}
}

func TestStartupSync(t *testing.T) {
	s := &fakeSyncer{failFor: map[int64]bool{2: true}}
	w := NewSyncWorker(s, nil, nil)

	err := w.StartupSync(context.Background(), []int64{1, 2, 3})
	if err == nil || !strings.Contains(err.Error(), "owner 2") {
		t.Fatalf("error = %v", err)
	}
	if len(s.synced) != 2 || s.synced[0] != 1 || s.synced[1] != 3 {
		t.Errorf("synced %v", s.synced)
	}

	if err := w.StartupSync(context.Background(), nil); err != nil {
		t.Errorf("empty startup sync: %v", err)
	}
}
