package store

import (
	"context"
	"errors"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// ErrNotFound is returned when a transaction or item does not exist.
var ErrNotFound = errors.New("not found")

// Reader is the read contract the analysis path depends on.
type Reader interface {
	// ReadTransactions returns transactions matching every set predicate,
	// newest first.
	ReadTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	// ReadItems returns the persisted items of a transaction, empty if none.
	ReadItems(ctx context.Context, transactionID int64) ([]domain.Item, error)
	GetTransaction(ctx context.Context, id int64) (domain.Transaction, error)
}

// Writer holds the pass-through mutations.
type Writer interface {
	CreateTransaction(ctx context.Context, params domain.CreateTransactionParams) (domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, params domain.UpdateTransactionParams) (domain.Transaction, error)
	// DeleteTransaction removes a transaction and its items.
	DeleteTransaction(ctx context.Context, id int64) error

	AddItem(ctx context.Context, transactionID int64, params domain.CreateItemParams) (domain.Item, error)
	UpdateItem(ctx context.Context, id int64, params domain.UpdateItemParams) (domain.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// Aggregator holds the summary queries. Only the date range of the filter applies.
type Aggregator interface {
	SummaryByCategory(ctx context.Context, filter domain.TransactionFilter) ([]domain.CategorySummary, error)
	SummaryByDate(ctx context.Context, filter domain.TransactionFilter) ([]domain.DateSummary, error)
	SummaryByPlatform(ctx context.Context, filter domain.TransactionFilter) ([]domain.PlatformSummary, error)
	Balance(ctx context.Context, filter domain.TransactionFilter) (domain.Balance, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListPlatforms(ctx context.Context) ([]string, error)
}

// Store is the full transaction store.
type Store interface {
	Reader
	Writer
	Aggregator
	Close() error
}
