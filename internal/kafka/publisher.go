// Package kafka carries ledger events over a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"giftledger/internal/core"
	"giftledger/internal/ledger"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per event, keyed by owner so an owner's
// events stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

var _ ledger.Publisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, ev core.LedgerEvent) error {
	msg, err := newMessage(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(ev core.LedgerEvent) (kafka.Message, error) {
	data, err := ev.ToJSON()
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OwnerID, 10)),
		Value: data,
		Time:  ev.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_kind", Value: []byte(ev.Kind)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}, nil
}
