package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"giftledger/internal/log"
	"giftledger/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// StatsSyncerConfig holds configuration for the stats mirror
type StatsSyncerConfig struct {
	// SheetPrefix names each owner's sheet: prefix + owner id (default "Stats ")
	SheetPrefix string

	// Months is the monthly window mirrored (default: 12)
	Months int

	// FlushInterval is how often queued owners are synced (default: 5s)
	FlushInterval time.Duration

	// MaxRetries is how many flushes an owner may fail before it is dropped (default: 3)
	MaxRetries int

	// Concurrency bounds parallel range writes per owner (default: 4)
	Concurrency int
}

// DefaultStatsSyncerConfig returns sensible defaults
func DefaultStatsSyncerConfig() StatsSyncerConfig {
	return StatsSyncerConfig{
		SheetPrefix:   "Stats ",
		Months:        DefaultStatsMonths,
		FlushInterval: 5 * time.Second,
		MaxRetries:    3,
		Concurrency:   4,
	}
}

// StatsSyncer mirrors owner dashboards into a spreadsheet. Owners are queued
// by Enqueue and synced at most once per flush, so a burst of events for the
// same owner costs one recompute.
type StatsSyncer struct {
	stats  *StatsService
	writer sheets.StatsWriter
	config StatsSyncerConfig
	logger *log.Logger

	pendingMu sync.Mutex
	pending   map[int64]struct{}
	attempts  map[int64]int

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewStatsSyncer(stats *StatsService, writer sheets.StatsWriter, config StatsSyncerConfig, logger *log.Logger) *StatsSyncer {
	def := DefaultStatsSyncerConfig()
	if config.SheetPrefix == "" {
		config.SheetPrefix = def.SheetPrefix
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = def.FlushInterval
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.Concurrency <= 0 {
		config.Concurrency = def.Concurrency
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &StatsSyncer{
		stats:    stats,
		writer:   writer,
		config:   config,
		logger:   logger.WithComponent(log.ComponentSheets),
		pending:  map[int64]struct{}{},
		attempts: map[int64]int{},
	}
}

// Sync recomputes the owner's dashboard and rewrites the owner's sheet.
func (s *StatsSyncer) Sync(ctx context.Context, ownerID int64) error {
	start := time.Now()
	dash, err := s.stats.Dashboard(ctx, ownerID, s.config.Months)
	if err != nil {
		return fmt.Errorf("compute dashboard: %w", err)
	}

	sheet := ownerSheet(s.config.SheetPrefix, ownerID)
	if err := s.writer.EnsureSheet(ctx, sheet); err != nil {
		return fmt.Errorf("ensure sheet: %w", err)
	}
	if err := s.writer.ClearRange(ctx, sheets.SheetRange(sheet, "")); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, r := range layoutBlocks(sheet, dashboardBlocks(dash)) {
		g.Go(func() error {
			return s.writer.WriteRange(gctx, r.a1, r.values)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Stats mirrored",
		log.NewFields().
			WithOperation(log.OpSync).
			WithOwner(ownerID).
			With(log.FieldSheetRange, sheet).
			With(log.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}

// Enqueue marks the owner for the next flush.
func (s *StatsSyncer) Enqueue(ownerID int64) {
	s.pendingMu.Lock()
	s.pending[ownerID] = struct{}{}
	s.pendingMu.Unlock()
}

// Pending returns the number of owners waiting for a flush.
func (s *StatsSyncer) Pending() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

// Start begins the flush loop. Returns an error if already running.
func (s *StatsSyncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("stats syncer is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.InfoContext(ctx, "Stats syncer started",
		"flush_interval", s.config.FlushInterval,
		"sheet_prefix", s.config.SheetPrefix)
	return nil
}

// Stop flushes what is queued and waits for the loop to exit. Only the
// first of concurrent callers closes the loop; the rest return at once.
func (s *StatsSyncer) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Stats syncer stopped gracefully")
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Stats syncer stop timed out")
		return ctx.Err()
	}
	return nil
}

// IsRunning returns whether the syncer loop is active
func (s *StatsSyncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *StatsSyncer) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			s.Flush(ctx)
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Flush syncs every queued owner once. Failed owners are requeued until
// they exceed MaxRetries.
func (s *StatsSyncer) Flush(ctx context.Context) {
	s.pendingMu.Lock()
	owners := make([]int64, 0, len(s.pending))
	for id := range s.pending {
		owners = append(owners, id)
	}
	s.pending = map[int64]struct{}{}
	s.pendingMu.Unlock()

	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	for i, ownerID := range owners {
		if ctx.Err() != nil {
			s.requeue(owners[i:])
			return
		}
		if err := s.Sync(ctx, ownerID); err != nil {
			s.handleFailure(ctx, ownerID, err)
			continue
		}
		s.pendingMu.Lock()
		delete(s.attempts, ownerID)
		s.pendingMu.Unlock()
	}
}

func (s *StatsSyncer) requeue(owners []int64) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	for _, id := range owners {
		s.pending[id] = struct{}{}
	}
}

func (s *StatsSyncer) handleFailure(ctx context.Context, ownerID int64, err error) {
	s.pendingMu.Lock()
	s.attempts[ownerID]++
	attempt := s.attempts[ownerID]
	if attempt < s.config.MaxRetries {
		s.pending[ownerID] = struct{}{}
	} else {
		delete(s.attempts, ownerID)
	}
	s.pendingMu.Unlock()

	fields := log.NewFields().WithOperation(log.OpSync).WithOwner(ownerID).WithError(err).With("attempt", attempt)
	if attempt < s.config.MaxRetries {
		s.logger.Fields(ctx, slog.LevelWarn, "Stats sync failed, will retry", fields)
		return
	}
	s.logger.Fields(ctx, slog.LevelError, "Stats sync failed permanently after max retries", fields)
}
