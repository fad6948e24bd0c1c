package storage

import (
	"database/sql"
	"fmt"
	"time"

	"giftledger/internal/core"
)

// SQLite hands back TEXT columns as strings while lib/pq returns time.Time
// for DATE and TIMESTAMPTZ; both scanners accept either.

type dateValue struct{ d *core.Date }

func (v dateValue) Scan(src any) error {
	switch t := src.(type) {
	case time.Time:
		*v.d = core.DateOf(t)
		return nil
	case string:
		return v.parse(t)
	case []byte:
		return v.parse(string(t))
	default:
		return fmt.Errorf("unsupported date column type %T", src)
	}
}

func (v dateValue) parse(s string) error {
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*v.d = d
	return nil
}

type timeValue struct{ t *time.Time }

func (v timeValue) Scan(src any) error {
	switch t := src.(type) {
	case time.Time:
		*v.t = t.UTC()
		return nil
	case string:
		return v.parse(t)
	case []byte:
		return v.parse(string(t))
	default:
		return fmt.Errorf("unsupported timestamp column type %T", src)
	}
}

func (v timeValue) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*v.t = t.UTC()
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const entryColumns = `id, owner_id, event_date, event_type, transaction_type, counterparty_name,
	relation, amount, contact, memo, created_at, updated_at`

func scanEntry(row rowScanner) (core.Entry, error) {
	var (
		e                       core.Entry
		tt                      string
		relation, contact, memo sql.NullString
	)
	err := row.Scan(
		&e.ID,
		&e.OwnerID,
		dateValue{&e.EventDate},
		&e.EventType,
		&tt,
		&e.CounterpartyName,
		&relation,
		&e.Amount,
		&contact,
		&memo,
		timeValue{&e.CreatedAt},
		timeValue{&e.UpdatedAt},
	)
	if err != nil {
		return core.Entry{}, err
	}
	e.TransactionType = core.TransactionType(tt)
	e.Relation = relation.String
	e.Contact = contact.String
	e.Memo = memo.String
	return e, nil
}
