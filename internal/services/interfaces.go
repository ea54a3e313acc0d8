package services

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/store"
)

// CreateTransactionInput is the payload accepted by CreateTransaction.
// The value bound matches models.MaxValue.
type CreateTransactionInput struct {
	Title    string          `json:"title" validate:"notblank,max=255"`
	Type     string          `json:"type" validate:"required,transaction_type"`
	Value    decimal.Decimal `json:"value" validate:"gte=0,lte=999999999999.99"`
	Category string          `json:"category" validate:"notblank,max=255"`
}

// TransactionList is a page of transactions together with the current balance.
type TransactionList struct {
	pagination.PageResponse[models.Transaction]
	Balance models.Balance `json:"balance"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error)
	GetBalance(ctx context.Context) (models.Balance, error)
	ListTransactions(ctx context.Context, page pagination.PageRequest, filter store.TransactionFilter) (*TransactionList, error)
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
}

// ImportResult summarises a committed import.
type ImportResult struct {
	Transactions      []models.Transaction `json:"transactions"`
	Imported          int                  `json:"imported"`
	Skipped           int                  `json:"skipped"`
	CategoriesCreated int                  `json:"categories_created"`
}

// ImportServicer defines the contract for bulk CSV imports.
type ImportServicer interface {
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
}

// CategoryServicer defines the contract for category lookups.
type CategoryServicer interface {
	GetCategories(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, action, resourceType, resourceID string, changes map[string]any)
}
