package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// DataStore is the read-only query surface over the loaded CSV snapshot.
type DataStore interface {
	EnsureCustomer(customerID string) error
	FindCustomerByIdentity(name string, birthdate time.Time) (string, error)
	ListActiveAccounts(customerID string, accountType domain.AccountType) ([]domain.Account, error)
	ListAllProducts(customerID string) ([]domain.Product, error)
	FilterTransactions(customerID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	ListCardProducts(customerID string) ([]domain.Product, error)
	CustomerSnapshot(customerID string) (domain.CustomerSnapshot, error)
	Balance(productID string) float64
	FormatAccount(account domain.Account) domain.AccountPayload
}

// DataStoreProvider hands out the process-wide snapshot, building it on first use.
type DataStoreProvider interface {
	DataStore(ctx context.Context) (DataStore, error)
}

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores conversation sessions between requests.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
