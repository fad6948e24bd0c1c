package services

import (
	"context"
	"log/slog"

	"giftledger/internal/core"
	"giftledger/internal/ledger"
	"giftledger/internal/log"
)

// EntryService orchestrates single-entry operations over the ledger store
// and announces committed changes on the publisher.
type EntryService struct {
	store     ledger.Store
	owners    ledger.OwnerResolver
	publisher ledger.Publisher
	logger    *log.Logger
}

func NewEntryService(store ledger.Store, publisher ledger.Publisher, logger *log.Logger) *EntryService {
	if publisher == nil {
		publisher = ledger.NopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &EntryService{
		store:     store,
		owners:    store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentEntry),
	}
}

// Create validates the draft and stores a new entry for the owner.
func (s *EntryService) Create(ctx context.Context, ownerID int64, d core.Draft) (core.Entry, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return core.Entry{}, err
	}
	if err := requireOwner(ctx, s.owners, ownerID); err != nil {
		return core.Entry{}, s.fail(ctx, log.OpCreate, ownerID, err)
	}

	e := core.NewEntry(ownerID, d)
	if err := s.store.CreateEntry(ctx, e); err != nil {
		return core.Entry{}, s.fail(ctx, log.OpCreate, ownerID, err)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Entry created",
		log.NewFields().WithOperation(log.OpCreate).WithOwner(ownerID).WithEntry(e.ID))

	ev := core.NewLedgerEvent(core.EventEntryCreated, ownerID)
	ev.EntryID = e.ID
	publish(ctx, s.publisher, s.logger, ev)
	return *e, nil
}

func (s *EntryService) Get(ctx context.Context, ownerID, id int64) (core.Entry, error) {
	e, err := s.store.GetEntry(ctx, ownerID, id)
	if err != nil {
		return core.Entry{}, s.fail(ctx, log.OpRead, ownerID, err)
	}
	return e, nil
}

// Update replaces every mutable field of the entry with the draft.
func (s *EntryService) Update(ctx context.Context, ownerID, id int64, d core.Draft) (core.Entry, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return core.Entry{}, err
	}
	if err := requireOwner(ctx, s.owners, ownerID); err != nil {
		return core.Entry{}, s.fail(ctx, log.OpUpdate, ownerID, err)
	}

	e, err := s.store.GetEntry(ctx, ownerID, id)
	if err != nil {
		return core.Entry{}, s.fail(ctx, log.OpUpdate, ownerID, err)
	}
	e.Apply(d)
	if err := s.store.UpdateEntry(ctx, &e); err != nil {
		return core.Entry{}, s.fail(ctx, log.OpUpdate, ownerID, err)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Entry updated",
		log.NewFields().WithOperation(log.OpUpdate).WithOwner(ownerID).WithEntry(e.ID))

	ev := core.NewLedgerEvent(core.EventEntryUpdated, ownerID)
	ev.EntryID = e.ID
	publish(ctx, s.publisher, s.logger, ev)
	return e, nil
}

func (s *EntryService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := requireOwner(ctx, s.owners, ownerID); err != nil {
		return s.fail(ctx, log.OpDelete, ownerID, err)
	}
	if err := s.store.DeleteEntry(ctx, ownerID, id); err != nil {
		return s.fail(ctx, log.OpDelete, ownerID, err)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Entry deleted",
		log.NewFields().WithOperation(log.OpDelete).WithOwner(ownerID).WithEntry(id))

	ev := core.NewLedgerEvent(core.EventEntryDeleted, ownerID)
	ev.EntryID = id
	publish(ctx, s.publisher, s.logger, ev)
	return nil
}

// List returns one page of the owner's entries, newest event first.
func (s *EntryService) List(ctx context.Context, ownerID int64, q core.ListQuery) (core.Page, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return core.Page{}, err
	}
	page, err := s.store.ListEntries(ctx, ownerID, q)
	if err != nil {
		return core.Page{}, s.fail(ctx, log.OpList, ownerID, err)
	}
	return page, nil
}

// fail logs storage failures with their cause and hands err back unchanged.
func (s *EntryService) fail(ctx context.Context, op string, ownerID int64, err error) error {
	if core.IsStorage(err) {
		s.logger.Fields(ctx, slog.LevelError, "Entry operation failed",
			log.NewFields().WithOperation(op).WithOwner(ownerID).WithError(err))
	}
	return err
}

func requireOwner(ctx context.Context, owners ledger.OwnerResolver, ownerID int64) error {
	ok, err := owners.OwnerExists(ctx, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrOwnerNotFound
	}
	return nil
}

// publish sends ev and only logs a failure; the change is already committed.
func publish(ctx context.Context, p ledger.Publisher, logger *log.Logger, ev core.LedgerEvent) {
	if err := p.Publish(ctx, ev); err != nil {
		logger.Fields(ctx, slog.LevelWarn, "Failed to publish ledger event",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithOwner(ev.OwnerID).
				WithError(err).
				With(log.FieldEventID, ev.ID).
				With(log.FieldEventKind, string(ev.Kind)))
	}
}
