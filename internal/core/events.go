package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventEntryCreated  EventKind = "entry_created"
	EventEntryUpdated  EventKind = "entry_updated"
	EventEntryDeleted  EventKind = "entry_deleted"
	EventBatchImported EventKind = "batch_imported"
)

// LedgerEvent announces a committed change to one owner's ledger.
// It carries identifiers only; consumers re-read the store.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	OwnerID    int64     `json:"ownerId"`
	EntryID    int64     `json:"entryId,omitempty"`
	BatchID    string    `json:"batchId,omitempty"`
	EntryCount int       `json:"entryCount,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps a fresh event id and time.
func NewLedgerEvent(kind EventKind, ownerID int64) LedgerEvent {
	return LedgerEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   ownerID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by ToJSON.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	if e.OwnerID <= 0 || e.Kind == "" {
		return LedgerEvent{}, &ValidationError{Field: "event", Message: "invalid ledger event"}
	}
	return e, nil
}
