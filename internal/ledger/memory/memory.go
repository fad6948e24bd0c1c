// Package memory is an in-process ledger.Store used by tests and the memory backend.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"giftledger/internal/core"
	"giftledger/internal/ledger"
)

type Store struct {
	mu      sync.RWMutex
	owners  map[int64]core.Owner
	entries map[int64]core.Entry
	ownerID int64
	entryID int64
	now     func() time.Time
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		owners:  map[int64]core.Owner{},
		entries: map[int64]core.Entry{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateOwner(_ context.Context, name string) (core.Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Owner{}, &core.ValidationError{Field: "name", Message: "이름은 필수입니다"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID++
	o := core.Owner{ID: s.ownerID, Name: name, CreatedAt: s.now()}
	s.owners[o.ID] = o
	return o, nil
}

func (s *Store) OwnerExists(_ context.Context, ownerID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owners[ownerID]
	return ok, nil
}

func (s *Store) CreateEntry(_ context.Context, e *core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[e.OwnerID]; !ok {
		return core.ErrOwnerNotFound
	}
	s.insertLocked(e)
	return nil
}

// CreateEntries appends the batch under one write lock, so readers observe
// either none or all of it.
func (s *Store) CreateEntries(_ context.Context, ownerID int64, es []*core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[ownerID]; !ok {
		return core.ErrOwnerNotFound
	}
	for _, e := range es {
		e.OwnerID = ownerID
		s.insertLocked(e)
	}
	return nil
}

func (s *Store) insertLocked(e *core.Entry) {
	s.entryID++
	now := s.now()
	e.ID = s.entryID
	e.CreatedAt = now
	e.UpdatedAt = now
	s.entries[e.ID] = *e
}

func (s *Store) GetEntry(_ context.Context, ownerID, id int64) (core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.OwnerID != ownerID {
		return core.Entry{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, e *core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[e.ID]
	if !ok || cur.OwnerID != e.OwnerID {
		return core.ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = s.now()
	s.entries[e.ID] = *e
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) ListEntries(_ context.Context, ownerID int64, q core.ListQuery) (core.Page, error) {
	s.mu.RLock()
	matched := make([]core.Entry, 0)
	for _, e := range s.entries {
		if e.OwnerID != ownerID {
			continue
		}
		if q.Type != "" && e.TransactionType != q.Type {
			continue
		}
		if q.Search != "" && !strings.Contains(e.CounterpartyName, q.Search) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)
	total := int64(len(matched))
	start := min(q.Offset(), len(matched))
	end := start + min(q.Size, len(matched)-start)
	return core.NewPage(slices.Clone(matched[start:end]), q, total), nil
}

func (s *Store) SnapshotEntries(_ context.Context, ownerID int64) ([]core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Entry, 0)
	for _, e := range s.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) Close() error { return nil }

// event_date DESC, id DESC
func sortNewestFirst(es []core.Entry) {
	slices.SortFunc(es, func(a, b core.Entry) int {
		if c := b.EventDate.Compare(a.EventDate.Time); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
