package services

import (
	"context"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/store"
	"fintrack/internal/validator"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	repo  store.Repository
	audit AuditServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(repo store.Repository, audit AuditServicer) TransactionServicer {
	return &transactionService{
		repo:  repo,
		audit: audit,
	}
}

// CreateTransaction records a single transaction. An outcome larger than the
// current balance is rejected and nothing is written. The category is looked
// up by title and created when missing.
func (s *transactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Type = strings.TrimSpace(input.Type)
	input.Category = strings.TrimSpace(input.Category)

	txType, ok := models.ParseTransactionType(input.Type)
	if !ok {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if err := validator.Struct(input); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, validator.Describe(err))
	}
	value := input.Value.Round(2)

	var result *models.Transaction
	err := s.repo.Do(ctx, func(tx store.Stores) error {
		balance, err := tx.Transactions.Balance(ctx)
		if err != nil {
			return err
		}
		if txType == models.TransactionTypeOutcome && !balance.Covers(value) {
			return apperrors.ErrInsufficientBalance
		}

		category, err := findOrCreateCategory(ctx, tx.Categories, input.Category)
		if err != nil {
			return err
		}

		transaction := &models.Transaction{
			Title:      input.Title,
			Type:       txType,
			Value:      value,
			CategoryID: category.ID,
		}
		if err := tx.Transactions.Create(ctx, transaction); err != nil {
			return err
		}
		transaction.Category = category
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditActionCreateTransaction, "transaction", result.ID, map[string]any{
		"type":     result.Type,
		"value":    result.Value.String(),
		"category": result.Category.Title,
	})
	return result, nil
}

func findOrCreateCategory(ctx context.Context, categories store.CategoryStore, title string) (*models.Category, error) {
	category, err := categories.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category = &models.Category{Title: title}
	if err := categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetBalance returns the balance over all persisted transactions.
func (s *transactionService) GetBalance(ctx context.Context) (models.Balance, error) {
	return s.repo.Transactions().Balance(ctx)
}

// ListTransactions retrieves a paginated, filtered list of transactions
// along with the current balance.
func (s *transactionService) ListTransactions(ctx context.Context, page pagination.PageRequest, filter store.TransactionFilter) (*TransactionList, error) {
	if filter.Type != nil {
		if _, ok := models.ParseTransactionType(string(*filter.Type)); !ok {
			return nil, apperrors.ErrInvalidTransactionType
		}
	}

	transactions := s.repo.Transactions()
	result, err := transactions.List(ctx, page, filter)
	if err != nil {
		return nil, err
	}
	balance, err := transactions.Balance(ctx)
	if err != nil {
		return nil, err
	}
	return &TransactionList{PageResponse: *result, Balance: balance}, nil
}

// GetTransactionByID retrieves a single transaction with its category.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction ID is required")
	}
	return s.repo.Transactions().FindByID(ctx, id)
}
