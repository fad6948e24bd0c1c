package core

import (
	"math"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery selects one page of an owner's entries. Search is a
// case-sensitive substring of the counterparty name; empty means no filter.
type ListQuery struct {
	Page   int
	Size   int
	Search string
	Type   TransactionType
}

// Normalize applies the default page size and trims the search term.
func (q ListQuery) Normalize() ListQuery {
	if q.Size == 0 {
		q.Size = DefaultPageSize
	}
	if strings.TrimSpace(q.Search) == "" {
		q.Search = ""
	}
	q.Type = TransactionType(strings.ToUpper(strings.TrimSpace(string(q.Type))))
	return q
}

func (q ListQuery) Validate() error {
	if q.Page < 0 {
		return &ValidationError{Field: "page", Message: "페이지 번호는 0 이상이어야 합니다"}
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		return &ValidationError{Field: "size", Message: "페이지 크기는 1에서 100 사이여야 합니다"}
	}
	if q.Type != "" && !q.Type.Valid() {
		return &ValidationError{Field: "transactionType", Message: "거래 유형은 RECEIVED 또는 SENT만 가능합니다"}
	}
	return nil
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt, so a page past the end stays past the end.
func (q ListQuery) Offset() int {
	if q.Page <= 0 || q.Size <= 0 {
		return 0
	}
	if q.Page > math.MaxInt/q.Size {
		return math.MaxInt
	}
	return q.Page * q.Size
}

// Page is one slice of a filtered, ordered entry listing.
type Page struct {
	Items      []Entry `json:"items"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	TotalItems int64   `json:"totalItems"`
	TotalPages int     `json:"totalPages"`
}

// NewPage fills the paging totals for items fetched with q.
func NewPage(items []Entry, q ListQuery, total int64) Page {
	if items == nil {
		items = []Entry{}
	}
	pages := 0
	if q.Size > 0 {
		pages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return Page{Items: items, Page: q.Page, Size: q.Size, TotalItems: total, TotalPages: pages}
}

// ImportResult reports a committed batch. A rejected batch is an *ImportError instead.
type ImportResult struct {
	BatchID      string     `json:"batchId"`
	SuccessCount int        `json:"successCount"`
	FailCount    int        `json:"failCount"`
	Errors       []RowError `json:"errors"`
}
