package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"giftledger/internal/amqp"
	"giftledger/internal/kafka"
	"giftledger/internal/ledger"
	"giftledger/internal/ledger/memory"
	"giftledger/internal/log"
	"giftledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the configured store and publisher. A publisher that
// cannot connect is logged and replaced by a no-op so the ledger stays usable.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}
	publisher := f.createPublisher(config)

	f.logger.Fields(ctx, slog.LevelInfo, "Initialized backend", log.NewFields().
		WithOperation(log.OpStartup).
		With(log.FieldBackend, config.Type.String()).
		With(log.FieldBroker, config.brokerName()))

	return &BackendResult{
		Store:     store,
		Publisher: publisher,
		Cleanup: func() error {
			return errors.Join(publisher.Close(), store.Close())
		},
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (ledger.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		return repo, nil
	case MemoryBackend:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPublisher(config Config) ledger.Publisher {
	switch config.Broker {
	case AMQPBroker:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			return ledger.NopPublisher{}
		}
		return client
	case KafkaBroker:
		return kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic)
	default:
		return ledger.NopPublisher{}
	}
}

func (c Config) brokerName() string {
	if c.Broker == "" {
		return NoBroker.String()
	}
	return c.Broker.String()
}
