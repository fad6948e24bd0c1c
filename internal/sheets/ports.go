package sheets

import "context"

// Ports for outbound adapters.
type (
	// RangeReader reads a rectangular A1 range as raw cell values: numbers
	// as float64, booleans as bool and everything else as string.
	RangeReader interface {
		ReadRange(ctx context.Context, a1 string) ([][]any, error)
	}

	// StatsWriter owns the mirror sheets the stats syncer fills.
	StatsWriter interface {
		// EnsureSheet creates the sheet when the spreadsheet lacks it.
		EnsureSheet(ctx context.Context, title string) error
		ClearRange(ctx context.Context, a1 string) error
		WriteRange(ctx context.Context, a1 string, values [][]any) error
	}
)
