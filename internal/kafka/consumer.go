package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"giftledger/internal/core"
	"giftledger/internal/log"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, ev core.LedgerEvent) error

// Consumer reads ledger events as a member of a consumer group. Offsets are
// committed after the handler returns, whatever it returned, so a poisoned
// message never blocks the partition.
type Consumer struct {
	reader messageReader
	logger *log.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *log.Logger) *Consumer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		logger: logger.WithComponent(log.ComponentKafka),
	}
}

// Consume blocks until ctx is cancelled or the reader fails.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		ev, err := core.LedgerEventFromJSON(msg.Value)
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to unmarshal message",
				"error", err, "partition", msg.Partition, "offset", msg.Offset)
		} else if err := handler(ctx, ev); err != nil {
			c.logger.Fields(ctx, slog.LevelError, "Failed to handle ledger event",
				log.NewFields().WithOwner(ev.OwnerID).WithError(err).With(log.FieldEventID, ev.ID))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("commit offset: %w", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
