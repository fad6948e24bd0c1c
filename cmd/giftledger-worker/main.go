package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"giftledger/internal/amqp"
	"giftledger/internal/backend"
	"giftledger/internal/cache"
	"giftledger/internal/cli"
	"giftledger/internal/config"
	"giftledger/internal/kafka"
	"giftledger/internal/log"
	"giftledger/internal/services"
	ports "giftledger/internal/sheets"
	gsheet "giftledger/internal/sheets/google"
	mem "giftledger/internal/sheets/memory"
	"giftledger/internal/worker"
)

func main() {
	resync := flag.String("resync", "", "comma separated owner ids to sync at startup")
	flag.Parse()

	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cli.SetupLogger(cfg, os.Stdout, log.ComponentWorker)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.EventsBroker == string(backend.NoBroker) {
		logger.Error("EVENTS_BROKER must be amqp or kafka for the worker")
		os.Exit(1)
	}
	startupOwners, err := parseOwnerIDs(*resync)
	if err != nil {
		logger.Error("Invalid -resync flag", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting giftledger-worker", log.FieldBackend, cfg.DataBackend, log.FieldBroker, cfg.EventsBroker)

	// The worker only reads the ledger; events come from the consumer below.
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.Broker = backend.NoBroker
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}

	writer, err := statsWriter(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	stats := services.NewStatsService(res.Store, logger, services.WithDefaultMonths(cfg.StatsDefaultMonths))
	syncCfg := services.DefaultStatsSyncerConfig()
	syncCfg.SheetPrefix = cfg.GoogleStatsSheetPrefix
	syncCfg.Months = cfg.StatsDefaultMonths
	syncCfg.FlushInterval = cfg.WorkerFlushInterval
	syncer := services.NewStatsSyncer(stats, writer, syncCfg, logger)

	seen := cache.NewLRUCache[struct{}](cfg.WorkerDedupeSize, cfg.WorkerDedupeTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(seen)
	cacheManager.StartCleanup(cfg.WorkerDedupeTTL)

	syncWorker := worker.NewSyncWorker(syncer, seen, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := syncer.Stop(stopCtx); err != nil {
			logger.Warn("Stats syncer stop failed", "error", err)
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", "error", err)
		}
	})

	if err := syncWorker.StartupSync(ctx, startupOwners); err != nil {
		// keep running; the owners will be retried on their next event
		logger.Error("Startup sync incomplete", "error", err)
	}

	// Not ctx: Stop must still be able to flush after the shutdown signal.
	if err := syncer.Start(context.Background()); err != nil {
		logger.Error("Failed to start stats syncer", "error", err)
		os.Exit(1)
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- consume(ctx, cfg, syncWorker, logger)
	}()

	select {
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}
	cli.WaitForShutdown(ctx, done)
}

// consume runs the configured broker's consumer until ctx is cancelled.
func consume(ctx context.Context, cfg *config.Config, w *worker.SyncWorker, logger *log.Logger) error {
	switch backend.BrokerType(cfg.EventsBroker) {
	case backend.AMQPBroker:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer client.Close()
		return w.ConsumeAMQP(ctx, client)
	case backend.KafkaBroker:
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
		defer consumer.Close()
		return w.ConsumeKafka(ctx, consumer)
	default:
		return fmt.Errorf("unsupported events broker %q", cfg.EventsBroker)
	}
}

// statsWriter returns the Google Sheets client, or an in-memory sheet when
// no spreadsheet is configured so the worker can still run locally.
func statsWriter(cfg *config.Config, logger *log.Logger) (ports.StatsWriter, error) {
	if !cfg.SheetsConfigured() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
		return mem.New(), nil
	}
	client, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

func parseOwnerIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid owner id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
