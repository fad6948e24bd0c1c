package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("항목을 찾을 수 없습니다")
	ErrOwnerNotFound = errors.New("사용자를 찾을 수 없습니다")
	ErrStorage       = errors.New("저장소 오류가 발생했습니다")
)

// ValidationError reports caller-supplied data that violates a field rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError hides a persistence failure behind a generic message.
// The cause stays reachable through Unwrap for logging.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return ErrStorage.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Cause describes the underlying failure for diagnostics only.
func (e *StorageError) Cause() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// RowError is a parse failure for one import row. Row is 1-based with the
// header occupying row 1.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("%d행: %s", e.Row, e.Reason)
}

// ImportError carries every row failure of a rejected batch.
type ImportError struct {
	Errors []RowError
}

func (e *ImportError) Error() string {
	var b strings.Builder
	b.WriteString("Excel 업로드 실패\n\n")
	fmt.Fprintf(&b, "총 %d건의 오류가 발생했습니다.\n\n", len(e.Errors))
	b.WriteString("오류 내역:\n")
	for _, re := range e.Errors {
		fmt.Fprintf(&b, "- %s\n", re.Error())
	}
	b.WriteString("\n양식에 맞춰 수정 후 다시 업로드해주세요.\n")
	b.WriteString("템플릿 다운로드: 대시보드 > Excel 업로드 > 템플릿 다운로드")
	return b.String()
}

// IsValidation reports whether err is a ValidationError or an ImportError.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ie *ImportError
	return errors.As(err, &ve) || errors.As(err, &ie)
}

// IsNotFound matches both missing entries and missing owners.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrOwnerNotFound)
}

// IsStorage reports whether err came from the persistence layer.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
