package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"giftledger/internal/core"
	"giftledger/internal/ledger"
	"giftledger/internal/ledger/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []core.LedgerEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev core.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) Events() []core.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.LedgerEvent(nil), p.events...)
}

// brokenStore fails every write with a storage error.
type brokenStore struct {
	ledger.Store
}

var errDiskFull = errors.New("disk full")

func (b brokenStore) CreateEntry(context.Context, *core.Entry) error {
	return core.NewStorageError("insert entry", errDiskFull)
}

func (b brokenStore) CreateEntries(context.Context, int64, []*core.Entry) error {
	return core.NewStorageError("insert batch", errDiskFull)
}

func (b brokenStore) SnapshotEntries(context.Context, int64) ([]core.Entry, error) {
	return nil, core.NewStorageError("snapshot entries", errDiskFull)
}

func newStoreWithOwner(t *testing.T) (*memory.Store, int64) {
	t.Helper()
	store := memory.New()
	o, err := store.CreateOwner(context.Background(), "owner")
	if err != nil {
		t.Fatal(err)
	}
	return store, o.ID
}
