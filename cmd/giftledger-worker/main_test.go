package main

import (
	"testing"

	"giftledger/internal/config"
	"giftledger/internal/log"
	mem "giftledger/internal/sheets/memory"
)

func TestParseOwnerIDs(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{"", nil, false},
		{"  ", nil, false},
		{"1", []int64{1}, false},
		{"1, 2,3", []int64{1, 2, 3}, false},
		{"1,x", nil, true},
		{"0", nil, true},
		{"1,,2", nil, true},
	}
	for _, tt := range tests {
		got, err := parseOwnerIDs(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOwnerIDs(%q) error = %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseOwnerIDs(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseOwnerIDs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestStatsWriterFallsBackToMemory(t *testing.T) {
	w, err := statsWriter(&config.Config{}, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*mem.Store); !ok {
		t.Errorf("writer = %T", w)
	}
}
