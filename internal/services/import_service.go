package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"giftledger/internal/core"
	"giftledger/internal/ledger"
	"giftledger/internal/log"
	"giftledger/internal/sheets"
	"giftledger/internal/table"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultImportMaxRows = 5000

// Fixed column order of an import sheet.
const (
	colEventDate = iota
	colEventType
	colGiverName
	colGiverRelation
	colAmount
	colContact
	colMemo
)

const (
	msgDateRequired     = "행사 날짜는 필수입니다"
	msgDateFormat       = "올바른 날짜 형식이 아닙니다"
	msgDateTextFormat   = "올바른 날짜 형식이 아닙니다 (yyyy-MM-dd)"
	msgEventTypeMissing = "행사 유형은 필수입니다"
	msgGiverMissing     = "보낸 사람 이름은 필수입니다"
	msgAmountFormat     = "올바른 금액 형식이 아닙니다"
)

// ImportService turns a spreadsheet into entries, all or nothing.
type ImportService struct {
	store     ledger.Store
	owners    ledger.OwnerResolver
	publisher ledger.Publisher
	reader    table.Reader
	maxRows   int
	logger    *log.Logger
}

type ImportOption func(*ImportService)

// WithReader overrides format sniffing with a fixed reader.
func WithReader(r table.Reader) ImportOption {
	return func(s *ImportService) { s.reader = r }
}

// WithMaxRows bounds the data rows accepted in one batch.
func WithMaxRows(n int) ImportOption {
	return func(s *ImportService) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

func NewImportService(store ledger.Store, publisher ledger.Publisher, logger *log.Logger, opts ...ImportOption) *ImportService {
	if publisher == nil {
		publisher = ledger.NopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	s := &ImportService{
		store:     store,
		owners:    store,
		publisher: publisher,
		maxRows:   DefaultImportMaxRows,
		logger:    logger.WithComponent(log.ComponentImport),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import reads data (CSV or XLSX) and stores every row or none.
func (s *ImportService) Import(ctx context.Context, ownerID int64, data []byte) (core.ImportResult, error) {
	if err := requireOwner(ctx, s.owners, ownerID); err != nil {
		return core.ImportResult{}, err
	}

	reader := s.reader
	if reader == nil {
		reader = table.Detect(data)
	}
	rows, err := reader.Read(ctx, data)
	if err != nil {
		s.logger.Fields(ctx, slog.LevelWarn, "Unreadable import file",
			log.NewFields().WithOperation(log.OpImport).WithOwner(ownerID).With(log.FieldCause, err.Error()))
		return core.ImportResult{}, &core.ValidationError{Field: "file", Message: "파일을 읽을 수 없습니다"}
	}
	return s.importRows(ctx, ownerID, rows)
}

// ImportRows runs the pipeline on rows already read, header first.
func (s *ImportService) ImportRows(ctx context.Context, ownerID int64, rows []table.Row) (core.ImportResult, error) {
	if err := requireOwner(ctx, s.owners, ownerID); err != nil {
		return core.ImportResult{}, err
	}
	return s.importRows(ctx, ownerID, rows)
}

// ImportRange reads an A1 range from a spreadsheet and runs it through the
// same pipeline. Row numbers in errors follow the sheet's own numbering.
func (s *ImportService) ImportRange(ctx context.Context, ownerID int64, src sheets.RangeReader, a1 string) (core.ImportResult, error) {
	if err := requireOwner(ctx, s.owners, ownerID); err != nil {
		return core.ImportResult{}, err
	}
	values, err := src.ReadRange(ctx, a1)
	if err != nil {
		s.logger.Fields(ctx, slog.LevelWarn, "Unreadable import range",
			log.NewFields().WithOperation(log.OpImport).WithOwner(ownerID).
				With(log.FieldSheetRange, a1).With(log.FieldCause, err.Error()))
		return core.ImportResult{}, &core.ValidationError{Field: "range", Message: "시트를 읽을 수 없습니다"}
	}
	return s.importRows(ctx, ownerID, table.FromValues(values, sheets.StartRow(a1)))
}

func (s *ImportService) importRows(ctx context.Context, ownerID int64, rows []table.Row) (core.ImportResult, error) {
	start := time.Now()

	data := dataRows(rows)
	if len(data) > s.maxRows {
		return core.ImportResult{}, &core.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("한 번에 최대 %d건까지 업로드할 수 있습니다", s.maxRows),
		}
	}

	entries := make([]*core.Entry, 0, len(data))
	var rowErrs []core.RowError
	for _, row := range data {
		d, err := parseRow(row)
		if err == nil {
			d = d.Normalize()
			err = d.Validate()
		}
		if err != nil {
			rowErrs = append(rowErrs, core.RowError{Row: row.Number, Reason: reason(err)})
			continue
		}
		entries = append(entries, core.NewEntry(ownerID, d))
	}

	if len(rowErrs) > 0 {
		s.logger.Fields(ctx, slog.LevelWarn, "Import rejected",
			log.NewFields().
				WithOperation(log.OpImport).
				WithOwner(ownerID).
				With(log.FieldRowCount, len(data)).
				With(log.FieldErrorCount, len(rowErrs)))
		return core.ImportResult{}, &core.ImportError{Errors: rowErrs}
	}

	batchID := uuid.NewString()
	if len(entries) > 0 {
		if err := s.store.CreateEntries(ctx, ownerID, entries); err != nil {
			if core.IsStorage(err) {
				s.logger.Fields(ctx, slog.LevelError, "Import failed",
					log.NewFields().WithOperation(log.OpImport).WithOwner(ownerID).WithBatch(batchID, len(entries)).WithError(err))
			}
			return core.ImportResult{}, err
		}

		ev := core.NewLedgerEvent(core.EventBatchImported, ownerID)
		ev.BatchID = batchID
		ev.EntryCount = len(entries)
		publish(ctx, s.publisher, s.logger, ev)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Import committed",
		log.NewFields().
			WithOperation(log.OpImport).
			WithOwner(ownerID).
			WithBatch(batchID, len(entries)).
			With(log.FieldDuration, time.Since(start).Milliseconds()))

	return core.ImportResult{
		BatchID:      batchID,
		SuccessCount: len(entries),
		FailCount:    0,
		Errors:       []core.RowError{},
	}, nil
}

// dataRows drops the header row and every blank row.
func dataRows(rows []table.Row) []table.Row {
	if len(rows) == 0 {
		return nil
	}
	out := make([]table.Row, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if !r.IsBlank() {
			out = append(out, r)
		}
	}
	return out
}

// parseRow maps the fixed columns onto a draft. Only the first problem of a
// row is reported.
func parseRow(row table.Row) (core.Draft, error) {
	var d core.Draft

	date, err := parseDateCell(row.Cell(colEventDate))
	if err != nil {
		return d, err
	}
	d.EventDate = date

	d.EventType = cellText(row.Cell(colEventType))
	if d.EventType == "" {
		return d, &core.ValidationError{Field: "eventType", Message: msgEventTypeMissing}
	}

	d.CounterpartyName = cellText(row.Cell(colGiverName))
	if d.CounterpartyName == "" {
		return d, &core.ValidationError{Field: "counterpartyName", Message: msgGiverMissing}
	}

	d.Relation = cellText(row.Cell(colGiverRelation))

	amount, err := parseAmountCell(row.Cell(colAmount))
	if err != nil {
		return d, err
	}
	d.Amount = amount

	d.Contact = cellText(row.Cell(colContact))
	d.Memo = cellText(row.Cell(colMemo))
	d.TransactionType = core.Received
	return d, nil
}

func parseDateCell(c table.Cell) (core.Date, error) {
	switch {
	case c.IsBlank():
		return core.Date{}, &core.ValidationError{Field: "eventDate", Message: msgDateRequired}
	case c.Kind() == table.Date:
		return core.DateOf(c.Time()), nil
	case c.Kind() == table.Text:
		d, err := core.ParseDate(c.Text())
		if err != nil {
			return core.Date{}, &core.ValidationError{Field: "eventDate", Message: msgDateTextFormat}
		}
		return d, nil
	default:
		return core.Date{}, &core.ValidationError{Field: "eventDate", Message: msgDateFormat}
	}
}

func parseAmountCell(c table.Cell) (decimal.Decimal, error) {
	switch {
	case c.IsBlank():
		return core.ParseAmountText("")
	case c.Kind() == table.Numeric:
		return core.AmountFromFloat(c.Number())
	case c.Kind() == table.Text:
		return core.ParseAmountText(c.Text())
	default:
		return decimal.Zero, &core.ValidationError{Field: "amount", Message: msgAmountFormat}
	}
}

func cellText(c table.Cell) string {
	return strings.TrimSpace(c.String())
}

func reason(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
