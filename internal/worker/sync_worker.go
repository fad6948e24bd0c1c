// Package worker turns ledger events into stats mirror refreshes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"giftledger/internal/amqp"
	"giftledger/internal/cache"
	"giftledger/internal/core"
	"giftledger/internal/kafka"
	"giftledger/internal/log"
)

// Syncer is the part of services.StatsSyncer the worker drives.
type Syncer interface {
	Enqueue(ownerID int64)
	Sync(ctx context.Context, ownerID int64) error
}

// SyncWorker handles ledger events from either broker. Each event only marks
// its owner dirty; the syncer coalesces and writes.
type SyncWorker struct {
	syncer Syncer
	seen   cache.Cache[struct{}]
	logger *log.Logger
}

// NewSyncWorker builds a worker. seen remembers handled event ids so a
// redelivered message does not trigger another sync; nil disables that.
func NewSyncWorker(syncer Syncer, seen cache.Cache[struct{}], logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		syncer: syncer,
		seen:   seen,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single ledger event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev core.LedgerEvent) error {
	fields := log.NewFields().
		WithOwner(ev.OwnerID).
		With(log.FieldEventID, ev.ID).
		With(log.FieldEventKind, string(ev.Kind))

	if ev.OwnerID <= 0 {
		w.logger.Fields(ctx, slog.LevelWarn, "Ignoring event without owner", fields)
		return nil
	}
	if w.seen != nil && ev.ID != "" && !w.seen.Add(ev.ID, struct{}{}) {
		w.logger.Fields(ctx, slog.LevelDebug, "Skipping duplicate event", fields)
		return nil
	}

	switch ev.Kind {
	case core.EventEntryCreated, core.EventEntryUpdated, core.EventEntryDeleted, core.EventBatchImported:
		w.syncer.Enqueue(ev.OwnerID)
		w.logger.Fields(ctx, slog.LevelDebug, "Owner queued for stats sync", fields)
	default:
		w.logger.Fields(ctx, slog.LevelWarn, "Unknown event kind", fields)
	}
	return nil
}

// StartupSync refreshes the given owners immediately, covering events
// missed while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context, ownerIDs []int64) error {
	if len(ownerIDs) == 0 {
		w.logger.InfoContext(ctx, "No owners requested for startup sync")
		return nil
	}

	var errs []error
	synced := 0
	for _, id := range ownerIDs {
		if err := w.syncer.Sync(ctx, id); err != nil {
			w.logger.Fields(ctx, slog.LevelError, "Startup sync failed",
				log.NewFields().WithOperation(log.OpSync).WithOwner(id).WithError(err))
			errs = append(errs, fmt.Errorf("owner %d: %w", id, err))
			continue
		}
		synced++
	}

	w.logger.Fields(ctx, slog.LevelInfo, "Startup sync completed", log.NewFields().
		WithOperation(log.OpSync).
		With("total", len(ownerIDs)).
		With("synced", synced).
		With(log.FieldErrorCount, len(errs)))
	return errors.Join(errs...)
}

// ConsumeAMQP feeds events from the RabbitMQ queue until ctx is done.
func (w *SyncWorker) ConsumeAMQP(ctx context.Context, c *amqp.Client) error {
	return c.Consume(ctx, w.HandleEvent)
}

// ConsumeKafka feeds events from the Kafka topic until ctx is done.
func (w *SyncWorker) ConsumeKafka(ctx context.Context, c *kafka.Consumer) error {
	return c.Consume(ctx, w.HandleEvent)
}
