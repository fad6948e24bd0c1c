package core

import "github.com/shopspring/decimal"

// UnspecifiedRelation is the bucket for entries without a relation.
const UnspecifiedRelation = "미지정"

// OverallStats summarises every entry of one owner.
type OverallStats struct {
	ReceivedTotal decimal.Decimal `json:"receivedTotal"`
	ReceivedCount int64           `json:"receivedCount"`
	ReceivedAvg   decimal.Decimal `json:"receivedAvg"`
	SentTotal     decimal.Decimal `json:"sentTotal"`
	SentCount     int64           `json:"sentCount"`
	SentAvg       decimal.Decimal `json:"sentAvg"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalCount    int64           `json:"totalCount"`
	AvgAmount     decimal.Decimal `json:"avgAmount"`
}

type YearlyStats struct {
	Year          int             `json:"year"`
	ReceivedTotal decimal.Decimal `json:"receivedTotal"`
	ReceivedCount int64           `json:"receivedCount"`
	SentTotal     decimal.Decimal `json:"sentTotal"`
	SentCount     int64           `json:"sentCount"`
	Difference    decimal.Decimal `json:"difference"`
}

type MonthlyStats struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"` // 1-12
	ReceivedTotal decimal.Decimal `json:"receivedTotal"`
	ReceivedCount int64           `json:"receivedCount"`
	SentTotal     decimal.Decimal `json:"sentTotal"`
	SentCount     int64           `json:"sentCount"`
}

// CounterpartyStats groups by (name, relation). LastEventType belongs to the
// entry with the latest date, highest id on ties.
type CounterpartyStats struct {
	Name          string          `json:"name"`
	Relation      string          `json:"relation"`
	ReceivedTotal decimal.Decimal `json:"receivedTotal"`
	ReceivedCount int64           `json:"receivedCount"`
	SentTotal     decimal.Decimal `json:"sentTotal"`
	SentCount     int64           `json:"sentCount"`
	Balance       decimal.Decimal `json:"balance"`
	LastEventDate Date            `json:"lastEventDate"`
	LastEventType string          `json:"lastEventType"`
}

type EventTypeStats struct {
	EventType       string          `json:"eventType"`
	ReceivedTotal   decimal.Decimal `json:"receivedTotal"`
	ReceivedCount   int64           `json:"receivedCount"`
	SentTotal       decimal.Decimal `json:"sentTotal"`
	SentCount       int64           `json:"sentCount"`
	AverageReceived decimal.Decimal `json:"averageReceived"`
	AverageSent     decimal.Decimal `json:"averageSent"`
}

type RelationStats struct {
	Relation        string          `json:"relation"`
	ReceivedTotal   decimal.Decimal `json:"receivedTotal"`
	ReceivedCount   int64           `json:"receivedCount"`
	SentTotal       decimal.Decimal `json:"sentTotal"`
	SentCount       int64           `json:"sentCount"`
	AverageReceived decimal.Decimal `json:"averageReceived"`
	AverageSent     decimal.Decimal `json:"averageSent"`
}

// Dashboard bundles all six views computed from one snapshot.
type Dashboard struct {
	Overall        OverallStats        `json:"overall"`
	Yearly         []YearlyStats       `json:"yearly"`
	Monthly        []MonthlyStats      `json:"monthly"`
	ByCounterparty []CounterpartyStats `json:"byCounterparty"`
	ByEventType    []EventTypeStats    `json:"byEventType"`
	ByRelation     []RelationStats     `json:"byRelation"`
}

// MarshalJSON renders a Date as yyyy-MM-dd.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts yyyy-MM-dd or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &ValidationError{Field: "eventDate", Message: "올바른 날짜 형식이 아닙니다 (yyyy-MM-dd)"}
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return &ValidationError{Field: "eventDate", Message: "올바른 날짜 형식이 아닙니다 (yyyy-MM-dd)"}
	}
	*d = parsed
	return nil
}
