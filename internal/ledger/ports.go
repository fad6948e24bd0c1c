// Package ledger declares the ports the ledger services depend on.
package ledger

import (
	"context"

	"giftledger/internal/core"
)

type (
	// OwnerResolver confirms that an owner exists.
	OwnerResolver interface {
		OwnerExists(ctx context.Context, ownerID int64) (bool, error)
	}

	// Store is the durable entry collection. Every read and write is scoped
	// to one owner; an entry addressed with the wrong owner is reported as
	// core.ErrNotFound.
	Store interface {
		OwnerResolver

		CreateOwner(ctx context.Context, name string) (core.Owner, error)
		CreateEntry(ctx context.Context, e *core.Entry) error
		// CreateEntries inserts every entry atomically after re-checking the owner.
		CreateEntries(ctx context.Context, ownerID int64, es []*core.Entry) error
		GetEntry(ctx context.Context, ownerID, id int64) (core.Entry, error)
		UpdateEntry(ctx context.Context, e *core.Entry) error
		DeleteEntry(ctx context.Context, ownerID, id int64) error
		ListEntries(ctx context.Context, ownerID int64, q core.ListQuery) (core.Page, error)
		// SnapshotEntries returns every entry of the owner from one consistent read.
		SnapshotEntries(ctx context.Context, ownerID int64) ([]core.Entry, error)
		Close() error
	}

	// Publisher announces committed ledger changes.
	Publisher interface {
		Publish(ctx context.Context, ev core.LedgerEvent) error
		Close() error
	}
)

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, core.LedgerEvent) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
