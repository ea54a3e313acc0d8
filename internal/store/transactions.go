package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

type transactionStore struct {
	db        *gorm.DB
	batchSize int
}

func (s *transactionStore) Balance(ctx context.Context) (models.Balance, error) {
	var income, outcome decimal.Decimal
	row := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN value ELSE 0 END), 0), COALESCE(SUM(CASE WHEN type = ? THEN value ELSE 0 END), 0)",
			models.TransactionTypeIncome, models.TransactionTypeOutcome,
		).
		Row()
	if err := row.Scan(&income, &outcome); err != nil {
		return models.Balance{}, classify(err)
	}
	// SQLite sums numeric columns as floats.
	return models.NewBalance(income.Round(2), outcome.Round(2)), nil
}

func (s *transactionStore) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(transaction).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (s *transactionStore) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(&transactions, s.batchSize).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (s *transactionStore) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, classify(err)
	}
	return &transaction, nil
}

func (s *transactionStore) List(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{})
	base = applyTransactionFilters(base, filter).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, classify(err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, classify(err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}
