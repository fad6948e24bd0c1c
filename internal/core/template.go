package core

import (
	"bytes"
	"encoding/csv"
)

// ImportColumns is the fixed column order of an import sheet.
var ImportColumns = []string{"event_date", "event_type", "giver_name", "giver_relation", "amount", "contact", "memo"}

// ColumnInfo describes one import column for the format help.
type ColumnInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

var TemplateColumns = []ColumnInfo{
	{"event_date", "행사 날짜 (yyyy-MM-dd 형식)", true},
	{"event_type", "행사 유형 (결혼식, 장례식, 돌잔치, 개업, 기타)", true},
	{"giver_name", "보낸 사람 이름", true},
	{"giver_relation", "관계 (친구, 가족, 직장동료 등)", false},
	{"amount", "금액 (숫자만, 쉼표 없이)", true},
	{"contact", "연락처 (010-1234-5678 형식)", false},
	{"memo", "메모 (선택 사항)", false},
}

const utf8BOM = "\ufeff"

// TemplateCSV renders the import template: a UTF-8 BOM, the header and three
// sample rows dated today, today+5 and today+15.
func TemplateCSV(today Date) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	rows := [][]string{
		ImportColumns,
		{today.String(), "결혼식", "홍길동", "친구", "100000", "010-1234-5678", "대학 동기"},
		{today.AddDays(5).String(), "장례식", "김철수", "가족", "200000", "010-9876-5432", "삼촌"},
		{today.AddDays(15).String(), "돌잔치", "이영희", "직장동료", "50000", "010-5555-1234", "같은 팀"},
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
