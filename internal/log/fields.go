package log

import (
	"errors"
	"sort"

	"giftledger/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldCause      = "cause"
	FieldDuration   = "duration_ms"
	FieldOwnerID    = "owner_id"
	FieldEntryID    = "entry_id"
	FieldBatchID    = "batch_id"
	FieldEventID    = "event_id"
	FieldEventKind  = "event_kind"
	FieldRowCount   = "row_count"
	FieldErrorCount = "error_count"
	FieldView       = "view"
	FieldMonths     = "months"
	FieldBackend    = "backend"
	FieldBroker     = "broker"
	FieldSheetRange = "sheet_range"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentEntry   = "entry"
	ComponentImport  = "import"
	ComponentStats   = "stats"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentKafka   = "kafka"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpImport   = "import"
	OpStats    = "stats"
	OpPublish  = "publish"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// ErrorType classifies err into one of the ErrorType categories.
func ErrorType(err error) string {
	var se *core.StorageError
	switch {
	case err == nil:
		return ""
	case core.IsValidation(err):
		return ErrorTypeValidation
	case core.IsNotFound(err):
		return ErrorTypeNotFound
	case errors.As(err, &se):
		return ErrorTypeDatabase
	default:
		return ErrorTypeInternal
	}
}

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithOwner(ownerID int64) LogFields {
	f[FieldOwnerID] = ownerID
	return f
}

func (f LogFields) WithEntry(entryID int64) LogFields {
	f[FieldEntryID] = entryID
	return f
}

// WithBatch adds the import batch id and its row count
func (f LogFields) WithBatch(batchID string, rows int) LogFields {
	f[FieldBatchID] = batchID
	f[FieldRowCount] = rows
	return f
}

// WithError adds the error, its category and, for storage failures, the
// underlying cause that callers never see.
func (f LogFields) WithError(err error) LogFields {
	if err == nil {
		return f
	}
	f[FieldError] = err.Error()
	f[FieldErrorType] = ErrorType(err)
	var se *core.StorageError
	if errors.As(err, &se) {
		f[FieldCause] = se.Cause()
	}
	return f
}

// ToSlice converts LogFields to a slice for slog, keys sorted for stable output
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}

// With sets an arbitrary field.
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}
