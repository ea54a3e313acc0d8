package store

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionStore persists transactions and computes the derived balance.
type TransactionStore interface {
	// Balance sums income minus outcome over all persisted transactions.
	Balance(ctx context.Context) (models.Balance, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	// CreateBatch persists all transactions in as few writes as possible.
	CreateBatch(ctx context.Context, transactions []models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	List(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// CategoryStore persists categories keyed by title.
type CategoryStore interface {
	// FindByTitle returns nil, nil when no category has the exact title.
	FindByTitle(ctx context.Context, title string) (*models.Category, error)
	FindByTitles(ctx context.Context, titles []string) ([]models.Category, error)
	// Create persists c. If another writer created the title first, c is
	// filled with the stored row instead.
	Create(ctx context.Context, category *models.Category) error
	// CreateBatch persists categories and returns the stored rows, which may
	// differ from the input for titles another writer created first.
	CreateBatch(ctx context.Context, categories []models.Category) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
}

// AuditStore persists audit log entries.
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Stores groups the stores bound to one connection or database transaction.
type Stores struct {
	Transactions TransactionStore
	Categories   CategoryStore
	Audit        AuditStore
}

// UnitOfWork runs fn against stores bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Stores) error) error
}

// Repository is the storage dependency of the service layer.
type Repository interface {
	UnitOfWork
	Transactions() TransactionStore
	Categories() CategoryStore
	Audit() AuditStore
}
