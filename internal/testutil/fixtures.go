package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// CreateTestCategory creates a category with a unique title.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryWithTitle(t, db, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryWithTitle creates a category with the given title.
func CreateTestCategoryWithTitle(t *testing.T, db *gorm.DB, title string) *models.Category {
	t.Helper()

	category := &models.Category{Title: title}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and value in categoryID.
func CreateTestTransaction(t *testing.T, db *gorm.DB, categoryID string, txType models.TransactionType, value int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Title:      fmt.Sprintf("Test Transaction %d", nextID()),
		Type:       txType,
		Value:      decimal.NewFromInt(value),
		CategoryID: categoryID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// SeedBalance creates a single income transaction so the balance equals value.
func SeedBalance(t *testing.T, db *gorm.DB, value int64) *models.Transaction {
	t.Helper()

	category := CreateTestCategoryWithTitle(t, db, fmt.Sprintf("Seed %d", nextID()))
	return CreateTestTransaction(t, db, category.ID, models.TransactionTypeIncome, value)
}
