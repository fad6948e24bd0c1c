package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftledger/internal/core"
	"giftledger/internal/log"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}

	ev := core.NewLedgerEvent(core.EventEntryDeleted, 42)
	ev.EntryID = 7
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "42" {
		t.Errorf("key = %q, want owner id", msg.Key)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != "entry_deleted" {
		t.Errorf("headers = %+v", msg.Headers)
	}
	got, err := core.LedgerEventFromJSON(msg.Value)
	if err != nil || got.EntryID != 7 || got.ID != ev.ID {
		t.Errorf("value decoded to %+v, %v", got, err)
	}
}

func TestPublisher_WrapsWriteError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: errors.New("leader not available")}}
	err := p.Publish(context.Background(), core.NewLedgerEvent(core.EventEntryCreated, 1))
	if err == nil || err.Error() != "write message: leader not available" {
		t.Fatalf("unexpected error: %v", err)
	}
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_CommitsEveryMessage(t *testing.T) {
	good, _ := newMessage(core.NewLedgerEvent(core.EventEntryCreated, 5))
	good.Offset = 1
	failing, _ := newMessage(core.NewLedgerEvent(core.EventEntryUpdated, 6))
	failing.Offset = 2
	r := &fakeReader{msgs: []kafka.Message{good, {Offset: 3, Value: []byte("garbage")}, failing}}
	c := &Consumer{reader: r, logger: log.Discard()}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var handled []int64
	err := c.Consume(ctx, func(_ context.Context, ev core.LedgerEvent) error {
		handled = append(handled, ev.OwnerID)
		if ev.OwnerID == 6 {
			cancel()
			return errors.New("sheet unavailable")
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Consume returned %v", err)
	}
	if len(handled) != 2 || handled[0] != 5 || handled[1] != 6 {
		t.Errorf("handled owners = %v", handled)
	}
	if len(r.committed) != 3 {
		t.Errorf("committed offsets = %v, want all three", r.committed)
	}
}
