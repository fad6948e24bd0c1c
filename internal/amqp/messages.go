package amqp

import (
	"fmt"

	"giftledger/internal/core"

	"github.com/rabbitmq/amqp091-go"
)

// newPublishing wraps a ledger event in a persistent JSON message. The event
// id doubles as the message id so consumers can drop redeliveries.
func newPublishing(ev core.LedgerEvent) (amqp091.Publishing, error) {
	body, err := ev.ToJSON()
	if err != nil {
		return amqp091.Publishing{}, err
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent, // make message persistent
		MessageId:    ev.ID,
		Type:         string(ev.Kind),
		Timestamp:    ev.Timestamp,
		Body:         body,
	}, nil
}

func decodeDelivery(body []byte) (core.LedgerEvent, error) {
	ev, err := core.LedgerEventFromJSON(body)
	if err != nil {
		return core.LedgerEvent{}, fmt.Errorf("decode ledger event: %w", err)
	}
	return ev, nil
}
