// Package memory is an in-process spreadsheet used by tests and by the
// worker when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	ports "giftledger/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string]struct{}
	ranges map[string][][]any
	writes int
}

var (
	_ ports.RangeReader = (*Store)(nil)
	_ ports.StatsWriter = (*Store)(nil)
)

func New() *Store {
	return &Store{sheets: map[string]struct{}{}, ranges: map[string][][]any{}}
}

// Put seeds a range for ReadRange.
func (s *Store) Put(a1 string, values [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[a1] = copyValues(values)
}

// ReadRange returns exactly what was stored under a1.
func (s *Store) ReadRange(_ context.Context, a1 string) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ranges[a1]
	if !ok {
		return nil, fmt.Errorf("read %s: range not found", a1)
	}
	return copyValues(v), nil
}

func (s *Store) EnsureSheet(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[title] = struct{}{}
	return nil
}

// ClearRange drops every stored range on the sheet a1 names.
func (s *Store) ClearRange(_ context.Context, a1 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheet := sheetOf(a1)
	for k := range s.ranges {
		if sheetOf(k) == sheet {
			delete(s.ranges, k)
		}
	}
	return nil
}

func (s *Store) WriteRange(_ context.Context, a1 string, values [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[strings.Trim(sheetOf(a1), "'")]; !ok {
		return fmt.Errorf("update %s: sheet does not exist", a1)
	}
	s.ranges[a1] = copyValues(values)
	s.writes++
	return nil
}

// Ranges lists the stored A1 keys in order.
func (s *Store) Ranges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ranges))
	for k := range s.ranges {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Writes counts successful WriteRange calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func sheetOf(a1 string) string {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		return a1[:i]
	}
	return a1
}

func copyValues(in [][]any) [][]any {
	out := make([][]any, len(in))
	for i, row := range in {
		out[i] = append([]any(nil), row...)
	}
	return out
}
