package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const (
	Received TransactionType = "RECEIVED"
	Sent     TransactionType = "SENT"
)

const (
	MaxEventTypeLen    = 50
	MaxCounterpartyLen = 100
	MaxRelationLen     = 50
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Owner struct {
		ID        int64
		Name      string
		CreatedAt time.Time
	}

	// Entry is one recorded gift transaction. OwnerID never changes once stored.
	Entry struct {
		ID               int64           `json:"id"`
		OwnerID          int64           `json:"ownerId"`
		EventDate        Date            `json:"eventDate"`
		EventType        string          `json:"eventType"`
		TransactionType  TransactionType `json:"transactionType"`
		CounterpartyName string          `json:"counterpartyName"`
		Relation         string          `json:"relation,omitempty"`
		Amount           decimal.Decimal `json:"amount"`
		Contact          string          `json:"contact,omitempty"`
		Memo             string          `json:"memo,omitempty"`
		CreatedAt        time.Time       `json:"createdAt"`
		UpdatedAt        time.Time       `json:"updatedAt"`
	}

	// Draft holds the caller-supplied, mutable fields of an entry.
	Draft struct {
		EventDate        Date
		EventType        string
		TransactionType  TransactionType
		CounterpartyName string
		Relation         string
		Amount           decimal.Decimal
		Contact          string
		Memo             string
	}
)

var (
	contactPattern = regexp.MustCompile(`^\d{2,3}-\d{3,4}-\d{4}$`)
	// NUMERIC(10,0)
	maxAmount = decimal.New(1, 10)
)

func (t TransactionType) Valid() bool {
	return t == Received || t == Sent
}

// ParseTransactionType accepts the canonical names case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "transactionType", Message: "거래 유형은 RECEIVED 또는 SENT만 가능합니다"}
	}
	return t, nil
}

// Normalize trims text fields, NFC-normalises them and applies the RECEIVED default.
func (d Draft) Normalize() Draft {
	d.EventType = normalizeText(d.EventType)
	d.CounterpartyName = normalizeText(d.CounterpartyName)
	d.Relation = normalizeText(d.Relation)
	d.Contact = normalizeText(d.Contact)
	d.Memo = norm.NFC.String(d.Memo)
	if strings.TrimSpace(string(d.TransactionType)) == "" {
		d.TransactionType = Received
	}
	return d
}

// Validate reports the first violated field constraint.
func (d Draft) Validate() error {
	if d.EventDate.IsZero() {
		return &ValidationError{Field: "eventDate", Message: "행사 날짜는 필수입니다"}
	}
	if strings.TrimSpace(d.EventType) == "" {
		return &ValidationError{Field: "eventType", Message: "행사 유형은 필수입니다"}
	}
	if utf8.RuneCountInString(d.EventType) > MaxEventTypeLen {
		return &ValidationError{Field: "eventType", Message: "행사 유형은 50자 이내여야 합니다"}
	}
	if !d.TransactionType.Valid() {
		return &ValidationError{Field: "transactionType", Message: "거래 유형은 RECEIVED 또는 SENT만 가능합니다"}
	}
	if strings.TrimSpace(d.CounterpartyName) == "" {
		return &ValidationError{Field: "counterpartyName", Message: "이름은 필수입니다"}
	}
	if utf8.RuneCountInString(d.CounterpartyName) > MaxCounterpartyLen {
		return &ValidationError{Field: "counterpartyName", Message: "이름은 100자 이내여야 합니다"}
	}
	if utf8.RuneCountInString(d.Relation) > MaxRelationLen {
		return &ValidationError{Field: "relation", Message: "관계는 50자 이내여야 합니다"}
	}
	if err := ValidateAmount(d.Amount); err != nil {
		return err
	}
	if d.Contact != "" && !contactPattern.MatchString(d.Contact) {
		return &ValidationError{Field: "contact", Message: "올바른 전화번호 형식이 아닙니다"}
	}
	return nil
}

// ValidateAmount enforces amount > 0, whole currency units and the column precision.
func ValidateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return &ValidationError{Field: "amount", Message: "금액은 양수여야 합니다"}
	}
	if !a.Equal(a.Truncate(0)) {
		return &ValidationError{Field: "amount", Message: "금액은 원 단위 정수여야 합니다"}
	}
	if a.GreaterThanOrEqual(maxAmount) {
		return &ValidationError{Field: "amount", Message: "금액이 허용 범위를 벗어났습니다"}
	}
	return nil
}

// Apply copies the draft's fields onto the entry, leaving identity and timestamps alone.
func (e *Entry) Apply(d Draft) {
	e.EventDate = d.EventDate
	e.EventType = d.EventType
	e.TransactionType = d.TransactionType
	e.CounterpartyName = d.CounterpartyName
	e.Relation = d.Relation
	e.Amount = d.Amount
	e.Contact = d.Contact
	e.Memo = d.Memo
}

// NewEntry builds an unsaved entry for the owner from a normalised draft.
func NewEntry(ownerID int64, d Draft) *Entry {
	e := &Entry{OwnerID: ownerID}
	e.Apply(d)
	return e
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
