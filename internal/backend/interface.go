package backend

import (
	"context"

	"giftledger/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger store, the event publisher and a cleanup
// that closes both.
type BackendResult struct {
	Store     ledger.Store
	Publisher ledger.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Event broker
	Broker       BrokerType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// BrokerType selects where ledger events go.
type BrokerType string

const (
	NoBroker    BrokerType = "none"
	AMQPBroker  BrokerType = "amqp"
	KafkaBroker BrokerType = "kafka"
)

func (bt BrokerType) String() string {
	return string(bt)
}

func (bt BrokerType) IsValid() bool {
	switch bt {
	case NoBroker, AMQPBroker, KafkaBroker:
		return true
	default:
		return false
	}
}
