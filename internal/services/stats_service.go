package services

import (
	"context"
	"log/slog"
	"time"

	"giftledger/internal/core"
	"giftledger/internal/ledger"
	"giftledger/internal/log"
	"giftledger/internal/stats"
)

const DefaultStatsMonths = 12

// StatsService computes aggregation views from a fresh owner snapshot on
// every call. Nothing is cached.
type StatsService struct {
	store         ledger.Store
	clock         func() time.Time
	defaultMonths int
	logger        *log.Logger
}

type StatsOption func(*StatsService)

// WithClock replaces time.Now when deriving the monthly window.
func WithClock(clock func() time.Time) StatsOption {
	return func(s *StatsService) { s.clock = clock }
}

// WithDefaultMonths sets the window used when a caller passes months <= 0.
func WithDefaultMonths(n int) StatsOption {
	return func(s *StatsService) {
		if n > 0 {
			s.defaultMonths = n
		}
	}
}

func NewStatsService(store ledger.Store, logger *log.Logger, opts ...StatsOption) *StatsService {
	if logger == nil {
		logger = log.Discard()
	}
	s := &StatsService{
		store:         store,
		clock:         time.Now,
		defaultMonths: DefaultStatsMonths,
		logger:        logger.WithComponent(log.ComponentStats),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StatsService) Overall(ctx context.Context, ownerID int64) (core.OverallStats, error) {
	entries, err := s.snapshot(ctx, ownerID, "overall")
	if err != nil {
		return core.OverallStats{}, err
	}
	return stats.Overall(entries), nil
}

func (s *StatsService) Yearly(ctx context.Context, ownerID int64) ([]core.YearlyStats, error) {
	entries, err := s.snapshot(ctx, ownerID, "yearly")
	if err != nil {
		return nil, err
	}
	return stats.Yearly(entries), nil
}

// Monthly covers entries dated on or after today minus months.
func (s *StatsService) Monthly(ctx context.Context, ownerID int64, months int) ([]core.MonthlyStats, error) {
	entries, err := s.snapshot(ctx, ownerID, "monthly")
	if err != nil {
		return nil, err
	}
	return stats.Monthly(entries, s.since(months)), nil
}

func (s *StatsService) ByCounterparty(ctx context.Context, ownerID int64) ([]core.CounterpartyStats, error) {
	entries, err := s.snapshot(ctx, ownerID, "counterparty")
	if err != nil {
		return nil, err
	}
	return stats.ByCounterparty(entries), nil
}

func (s *StatsService) ByEventType(ctx context.Context, ownerID int64) ([]core.EventTypeStats, error) {
	entries, err := s.snapshot(ctx, ownerID, "event_type")
	if err != nil {
		return nil, err
	}
	return stats.ByEventType(entries), nil
}

func (s *StatsService) ByRelation(ctx context.Context, ownerID int64) ([]core.RelationStats, error) {
	entries, err := s.snapshot(ctx, ownerID, "relation")
	if err != nil {
		return nil, err
	}
	return stats.ByRelation(entries), nil
}

// Dashboard computes all six views from a single snapshot.
func (s *StatsService) Dashboard(ctx context.Context, ownerID int64, months int) (core.Dashboard, error) {
	entries, err := s.snapshot(ctx, ownerID, "dashboard")
	if err != nil {
		return core.Dashboard{}, err
	}
	return stats.All(entries, s.since(months)), nil
}

func (s *StatsService) since(months int) core.Date {
	if months <= 0 {
		months = s.defaultMonths
	}
	return core.Today(s.clock).MinusMonths(months)
}

func (s *StatsService) snapshot(ctx context.Context, ownerID int64, view string) ([]core.Entry, error) {
	entries, err := s.store.SnapshotEntries(ctx, ownerID)
	if err != nil {
		s.logger.Fields(ctx, slog.LevelError, "Snapshot failed",
			log.NewFields().WithOperation(log.OpStats).WithOwner(ownerID).With(log.FieldView, view).WithError(err))
		return nil, err
	}
	s.logger.Fields(ctx, slog.LevelDebug, "Stats computed",
		log.NewFields().WithOperation(log.OpStats).WithOwner(ownerID).With(log.FieldView, view).With(log.FieldRowCount, len(entries)))
	return entries, nil
}
